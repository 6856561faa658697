package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/schedule"
)

type draftTarget struct {
	doctorID uuid.UUID
	scope    schedule.Scope
}

func draftParams(w http.ResponseWriter, r *http.Request) (draftTarget, bool) {
	doctorID, ok := uuidParam(w, r, "doctorID")
	if !ok {
		return draftTarget{}, false
	}
	scope, ok := scopeParam(w, r)
	if !ok {
		return draftTarget{}, false
	}
	return draftTarget{doctorID: doctorID, scope: scope}, true
}

func writeDraft(w http.ResponseWriter, r *http.Request, d *schedule.Draft, err error) {
	if err != nil {
		handleScheduleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func getDraftHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		d, err := svc.LoadDraft(r.Context(), t.doctorID, t.scope)
		writeDraft(w, r, d, err)
	}
}

func discardDraftHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		if err := svc.DiscardDraft(r.Context(), t.doctorID, t.scope); err != nil {
			handleScheduleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addDraftDayHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		var req AddDayRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		d, err := svc.AddDraftDay(r.Context(), t.doctorID, t.scope, req.Date)
		writeDraft(w, r, d, err)
	}
}

func removeDraftDayHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		d, err := svc.RemoveDraftDay(r.Context(), t.doctorID, t.scope, date)
		writeDraft(w, r, d, err)
	}
}

func toggleDraftSlotHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		idx, ok := indexParam(w, r, "index")
		if !ok {
			return
		}
		d, err := svc.ToggleDraftSlot(r.Context(), t.doctorID, t.scope, date, idx)
		writeDraft(w, r, d, err)
	}
}

func setDraftCapacityHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}
		idx, ok := indexParam(w, r, "index")
		if !ok {
			return
		}
		var req CapacityRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		d, err := svc.SetDraftSlotCapacity(r.Context(), t.doctorID, t.scope, date, idx, req.raw())
		writeDraft(w, r, d, err)
	}
}

func expandDraftHandler(svc ScheduleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}
		var req RecurrenceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		kind, err := schedule.ParseRangeKind(req.Scope)
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}

		d, report, err := svc.ExpandDraft(r.Context(), t.doctorID, t.scope, schedule.RecurrenceRequest{
			Anchor:     req.Anchor,
			Kind:       kind,
			End:        req.EndDate,
			Weekdays:   req.Weekdays,
			SourceDate: req.SourceDate,
		})
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, RecurrenceResponse{Draft: d, Report: report})
	}
}

func saveDraftHandler(svc ScheduleService, dir DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := draftParams(w, r)
		if !ok {
			return
		}

		stored, err := svc.SaveDraft(r.Context(), t.doctorID, t.scope)
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}

		rec, err := dir.DoctorRecord(r.Context(), t.doctorID)
		if err != nil {
			handleScheduleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, SaveDraftResponse{Schedule: stored, Doctor: rec})
	}
}
