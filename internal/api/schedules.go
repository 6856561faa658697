package api

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/schedule"
)

// availabilityHandler serves ?clinic_id=&from=&to=. Without clinic_id the
// general schedule is read; from defaults to today and to to a week later.
func availabilityHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := uuidParam(w, r, "doctorID")
		if !ok {
			return
		}

		q := r.URL.Query()
		scope := schedule.General
		if raw := q.Get("clinic_id"); raw != "" {
			clinicID, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
				return
			}
			scope = schedule.ClinicScope(clinicID)
		}

		from := svc.Today()
		if raw := q.Get("from"); raw != "" {
			d, err := civil.ParseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_from", "from must be a YYYY-MM-DD date")
				return
			}
			from = d
		}
		to := from.AddDays(6)
		if raw := q.Get("to"); raw != "" {
			d, err := civil.ParseDate(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_to", "to must be a YYYY-MM-DD date")
				return
			}
			to = d
		}

		days, err := svc.Availability(r.Context(), doctorID, scope, from, to)
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			DoctorID: doctorID,
			Scope:    scope,
			From:     from,
			To:       to,
			Days:     days,
		})
	}
}

func getScheduleHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := uuidParam(w, r, "doctorID")
		if !ok {
			return
		}
		scope, ok := scopeParam(w, r)
		if !ok {
			return
		}

		stored, err := svc.Schedule(r.Context(), doctorID, scope)
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	}
}

func replaceScheduleHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := uuidParam(w, r, "doctorID")
		if !ok {
			return
		}
		scope, ok := scopeParam(w, r)
		if !ok {
			return
		}

		var req ReplaceScheduleRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		stored, err := svc.ReplaceSchedule(r.Context(), doctorID, scope, req.Version, req.Days)
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stored)
	}
}
