package usecase

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/gogo-imperial/gogo-web/internal/entity"
)

// FieldErrors maps a request field to its human-readable problems.
type FieldErrors map[string][]string

func (f FieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// ValidatedLead is the normalized payload ready for storage.
type ValidatedLead struct {
	CompanyName  string
	FleetSize    entity.FleetSize
	FuelType     entity.FuelType
	Email        string
	Phone        string
	CaptchaToken string
	Honeypot     string
}

// ValidateLeadInput checks and normalizes a lead payload. It has no side effects.
func ValidateLeadInput(input SubmitLeadInput) (*ValidatedLead, FieldErrors) {
	errs := FieldErrors{}
	out := &ValidatedLead{
		CompanyName:  strings.TrimSpace(input.CompanyName),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		CaptchaToken: strings.TrimSpace(input.CaptchaToken),
		Honeypot:     input.Honeypot,
	}

	switch n := utf8.RuneCountInString(out.CompanyName); {
	case n == 0:
		errs.add("companyName", "Company name is required")
	case n < 2:
		errs.add("companyName", "Company name must be at least 2 characters")
	case n > 200:
		errs.add("companyName", "Company name must not exceed 200 characters")
	}

	if fs, ok := entity.ParseFleetSize(input.FleetSize); ok {
		out.FleetSize = fs
	} else {
		errs.add("fleetSize", "Fleet size must be one of 1-10, 11-50, 50+")
	}

	if ft, ok := entity.ParseFuelType(input.FuelType); ok {
		out.FuelType = ft
	} else {
		errs.add("fuelType", "Fuel type must be one of Diesel, Super, Both")
	}

	switch {
	case out.Email == "":
		errs.add("email", "Email is required")
	case len(out.Email) > 254:
		errs.add("email", "Email must not exceed 254 characters")
	case !isValidEmail(out.Email):
		errs.add("email", "Invalid email address")
	}

	switch n := utf8.RuneCountInString(out.Phone); {
	case n == 0:
		errs.add("phone", "Phone number is required")
	case n < 8:
		errs.add("phone", "Phone number is too short")
	case n > 20:
		errs.add("phone", "Phone number is too long")
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// isValidEmail accepts a bare addr-spec with a dotted domain; display names are rejected.
func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// CheckHoneypot reports whether the hidden field was left empty, as a human would.
func CheckHoneypot(value string) bool {
	return value == ""
}
