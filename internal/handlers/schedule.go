package handlers

import (
	"net/http"

	"github.com/clinicxz/backend/internal/services"
)

// GET /api/schedule
func ListSchedule(svc *services.Schedule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		evs, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, evs)
	}
}

// POST /api/schedule {"title", "time"}
func CreateScheduleEvent(svc *services.Schedule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Title string `json:"title"`
			Time  string `json:"time"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		ev, err := svc.Create(r.Context(), in.Title, in.Time)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ev)
	}
}

// PUT /api/schedule/{id} {"status"}
func UpdateScheduleStatus(svc *services.Schedule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Event not found")
			return
		}
		var in struct {
			Status string `json:"status"`
		}
		if !decodeJSON(w, r, &in) {
			return
		}
		ev, err := svc.UpdateStatus(r.Context(), id, in.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ev)
	}
}

// DELETE /api/schedule/{id}
func DeleteScheduleEvent(svc *services.Schedule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Event not found")
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/dashboard-stats
func DashboardStats(svc *services.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
