package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	ModeExact = "exact"
	ModeE164  = "e164"
)

// Exact keeps the phone string as stored. Leads are matched on the literal value.
type Exact struct{}

func (Exact) Canonical(raw string) string { return raw }

// E164 formats parsable numbers as E.164 using Region for numbers without a country code.
// Anything that does not parse to a valid number is returned unchanged.
type E164 struct {
	Region string
}

func (e E164) Canonical(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}

	region := e.Region
	if region == "" {
		region = "US"
	}

	parsed, err := phonenumbers.Parse(trimmed, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

type Canonicalizer interface {
	Canonical(raw string) string
}

// New picks the canonicalizer for the configured match mode.
func New(mode, region string) Canonicalizer {
	if strings.EqualFold(mode, ModeE164) {
		return E164{Region: strings.ToUpper(region)}
	}
	return Exact{}
}
