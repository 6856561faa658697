package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-availability/internal/directory"
)

func createDoctorHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		d, err := svc.CreateDoctor(r.Context(), directory.CreateDoctorInput{
			Name:      req.Name,
			Specialty: req.Specialty,
			Email:     req.Email,
		})
		if err != nil {
			if !handleDirectoryError(w, err) {
				writeInternal(w, r, err)
			}
			return
		}
		writeJSON(w, http.StatusCreated, d)
	}
}

func listDoctorsHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, ok := pageParams(w, r)
		if !ok {
			return
		}

		doctors, err := svc.SearchDoctors(r.Context(), directory.DoctorFilter{
			Query:     r.URL.Query().Get("q"),
			Specialty: r.URL.Query().Get("specialty"),
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ListDoctorsResponse{Doctors: doctors})
	}
}

func getDoctorHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "doctorID")
		if !ok {
			return
		}

		rec, err := svc.DoctorRecord(r.Context(), id)
		if err != nil {
			if !handleDirectoryError(w, err) {
				writeInternal(w, r, err)
			}
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func createClinicHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateClinicRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		c, err := svc.CreateClinic(r.Context(), directory.CreateClinicInput{Name: req.Name, Address: req.Address})
		if err != nil {
			if !handleDirectoryError(w, err) {
				writeInternal(w, r, err)
			}
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func listClinicsHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, ok := pageParams(w, r)
		if !ok {
			return
		}

		clinics, err := svc.ListClinics(r.Context(), r.URL.Query().Get("q"), limit, offset)
		if err != nil {
			writeInternal(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ListClinicsResponse{Clinics: clinics})
	}
}

func affiliateHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := uuidParam(w, r, "doctorID")
		if !ok {
			return
		}

		var req AffiliateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		clinicID, err := uuid.Parse(req.ClinicID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
			return
		}

		a, err := svc.Affiliate(r.Context(), doctorID, clinicID, req.ConsultationFee)
		if err != nil {
			if !handleDirectoryError(w, err) {
				writeInternal(w, r, err)
			}
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func createPatientHandler(svc DirectoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		p, err := svc.CreatePatient(r.Context(), directory.CreatePatientInput{
			Name:  req.Name,
			Email: req.Email,
			Phone: req.Phone,
		})
		if err != nil {
			if !handleDirectoryError(w, err) {
				writeInternal(w, r, err)
			}
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}
