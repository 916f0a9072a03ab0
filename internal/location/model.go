package location

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"roombook/internal/pkg/apperror"
)

var (
	ErrNotFound     = apperror.New(http.StatusNotFound, "location not found")
	ErrNameTaken    = apperror.New(http.StatusConflict, "location name already in use")
	ErrInvalidState = apperror.New(http.StatusBadRequest, "invalid state code, use two-letter codes like SP, RJ, MG")
	ErrInvalidCEP   = apperror.New(http.StatusBadRequest, "CEP must match the format XXXXX-XXX")
)

// Location represents a building or site that contains bookable rooms.
type Location struct {
	ID          string
	Name        string
	Address     string
	City        string
	State       string // two-letter code, stored uppercase
	CEP         string // postal code, XXXXX-XXX
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing locations.
type Filter struct {
	Keyword  string // matched against name and address
	Page     int
	PageSize int
}

var cepPattern = regexp.MustCompile(`^\d{5}-\d{3}$`)

var brazilianStates = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// Normalize uppercases the state code; called before validation and persistence.
func (l *Location) Normalize() {
	l.State = strings.ToUpper(strings.TrimSpace(l.State))
}

// Validate checks the state code and CEP format.
func (l *Location) Validate() error {
	if _, ok := brazilianStates[l.State]; !ok {
		return ErrInvalidState
	}
	if !cepPattern.MatchString(l.CEP) {
		return ErrInvalidCEP
	}
	return nil
}
