package handlers

import (
	"net/http"

	"github.com/clinicxz/backend/internal/services"
)

// POST /api/patients/{id}/sessions
func CreateSession(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Patient not found")
			return
		}
		var in services.NewSession
		if !decodeJSON(w, r, &in) {
			return
		}
		sess, err := svc.RecordVisit(r.Context(), pid, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)
	}
}

// PUT|PATCH /api/sessions/{id}
func UpdateSession(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Session not found")
			return
		}
		in, ok := decodePatch(w, r)
		if !ok {
			return
		}
		sess, err := svc.UpdateSession(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// POST /api/patients/{id}/issues
func CreateIssue(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Patient not found")
			return
		}
		var in services.NewIssue
		if !decodeJSON(w, r, &in) {
			return
		}
		issue, err := svc.CreateIssue(r.Context(), pid, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, issue)
	}
}

// PUT|PATCH /api/issues/{id}
func UpdateIssue(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Tracked issue not found")
			return
		}
		in, ok := decodePatch(w, r)
		if !ok {
			return
		}
		issue, err := svc.UpdateIssue(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, issue)
	}
}

// DELETE /api/issues/{id}
func DeleteIssue(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Tracked issue not found")
			return
		}
		if err := svc.DeleteIssue(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
