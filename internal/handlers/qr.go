package handlers

import (
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/clinicxz/backend/internal/services"
)

// PatientQR renders a PNG pointing at the patient's record page. baseURL
// falls back to the request host when empty.
func PatientQR(svc *services.Patients, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeDetail(w, http.StatusNotFound, "Patient not found")
			return
		}
		// ensure patient exists
		if _, err := svc.Read(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}

		base := baseURL
		if base == "" {
			base = "http://" + r.Host
		}
		url := base + "/patients/" + strconv.FormatUint(uint64(id), 10)

		png, err := qrcode.Encode(url, qrcode.Medium, 256)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
