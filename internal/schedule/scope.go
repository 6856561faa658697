package schedule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const generalScope = "general"

// Scope selects which of a doctor's schedules is addressed: the general
// (doctor-wide) one, or the one tied to a single clinic affiliation.
type Scope struct {
	ClinicID uuid.UUID
}

// General is the doctor-wide scope.
var General = Scope{}

func ClinicScope(clinicID uuid.UUID) Scope {
	return Scope{ClinicID: clinicID}
}

// ParseScope accepts "general" or a clinic UUID.
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, generalScope) {
		return General, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Scope{}, validationError(fmt.Sprintf("scope must be %q or a clinic id", generalScope))
	}
	if id == uuid.Nil {
		return General, nil
	}
	return ClinicScope(id), nil
}

func (s Scope) IsGeneral() bool { return s.ClinicID == uuid.Nil }

func (s Scope) String() string {
	if s.IsGeneral() {
		return generalScope
	}
	return s.ClinicID.String()
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(b []byte) error {
	parsed, err := ParseScope(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
