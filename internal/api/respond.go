package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/clinic-availability/internal/directory"
	"github.com/hackgods/clinic-availability/internal/schedule"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeInternal logs err against the request and hides it from the client.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	LoggerFrom(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong, please retry")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON: "+err.Error())
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func dateParam(w http.ResponseWriter, r *http.Request, name string) (civil.Date, bool) {
	d, err := civil.ParseDate(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a YYYY-MM-DD date")
		return civil.Date{}, false
	}
	return d, true
}

func indexParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func scopeParam(w http.ResponseWriter, r *http.Request) (schedule.Scope, bool) {
	scope, err := schedule.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scope", err.Error())
		return schedule.Scope{}, false
	}
	return scope, true
}

// pageParams reads limit and offset; zero values are left for the service
// to default.
func pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return 0, 0, false
		}
		limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

// validationMessage reports whether err was raised by input validation in
// any of the domain packages.
func validationMessage(err error) (string, bool) {
	var schedErr *schedule.ValidationError
	if errors.As(err, &schedErr) {
		return schedErr.Error(), true
	}
	var dirErr *directory.ValidationError
	if errors.As(err, &dirErr) {
		return dirErr.Error(), true
	}
	return "", false
}

// handleDirectoryError covers lookups every doctor-scoped route performs.
// It returns false when err is not a directory error.
func handleDirectoryError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, directory.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, directory.ErrClinicNotFound):
		writeError(w, http.StatusNotFound, "clinic_not_found", err.Error())
	case errors.Is(err, directory.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, directory.ErrNotAffiliated):
		writeError(w, http.StatusNotFound, "not_affiliated", err.Error())
	case errors.Is(err, directory.ErrPatientExists):
		writeError(w, http.StatusConflict, "patient_exists", err.Error())
	default:
		if msg, ok := validationMessage(err); ok {
			writeError(w, http.StatusBadRequest, "validation_error", msg)
			return true
		}
		return false
	}
	return true
}

func handleScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	if handleDirectoryError(w, err) {
		return
	}
	switch {
	case errors.Is(err, schedule.ErrDayExists):
		writeError(w, http.StatusConflict, "day_exists", err.Error())
	case errors.Is(err, schedule.ErrDayNotFound):
		writeError(w, http.StatusNotFound, "day_not_found", err.Error())
	case errors.Is(err, schedule.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, schedule.ErrDraftNotFound):
		writeError(w, http.StatusNotFound, "draft_not_found", err.Error())
	case errors.Is(err, schedule.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, schedule.ErrSlotHasBookings):
		writeError(w, http.StatusConflict, "slot_has_bookings", err.Error())
	case errors.Is(err, schedule.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", err.Error())
	default:
		writeInternal(w, r, err)
	}
}
