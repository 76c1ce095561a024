package handlers

import (
	"net/http"

	"github.com/clinicxz/backend/internal/services"
)

// GET /api/patients
func ListPatients(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := svc.List(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

// POST /api/patients
func CreatePatient(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, ok := decodePatch(w, r)
		if !ok {
			return
		}
		p, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// GET /api/patients/{id}
func GetPatient(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Patient not found")
			return
		}
		p, err := svc.Read(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// PUT|PATCH /api/patients/{id}
func UpdatePatient(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Patient not found")
			return
		}
		in, ok := decodePatch(w, r)
		if !ok {
			return
		}
		p, err := svc.Update(r.Context(), id, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// DELETE /api/patients/{id}
func DeletePatient(svc *services.Patients) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Patient not found")
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
