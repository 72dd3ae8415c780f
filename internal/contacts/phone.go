package contacts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onurcolak/contact-dispatch-service/environments"
)

var ErrMissingCountryCode = errors.New("missing country code")

// PhonePolicy decides what happens to a phone number without a leading '+'.
type PhonePolicy struct {
	// DefaultCode is prepended when set; otherwise such numbers are rejected.
	DefaultCode string
}

// RequireExplicitCountryCode rejects numbers that do not start with '+'.
func RequireExplicitCountryCode() PhonePolicy {
	return PhonePolicy{}
}

// PrependDefault fills in code for numbers that do not start with '+'.
func PrependDefault(code string) PhonePolicy {
	code = strings.TrimSpace(code)
	if code != "" && !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	return PhonePolicy{DefaultCode: code}
}

// PolicyFromConfig maps the configured policy name onto a PhonePolicy.
func PolicyFromConfig(cfg environments.DispatchConfig) (PhonePolicy, error) {
	switch cfg.PhonePolicy {
	case "", environments.PhonePolicyRequireExplicit:
		return RequireExplicitCountryCode(), nil
	case environments.PhonePolicyPrependDefault:
		p := PrependDefault(cfg.DefaultCountryCode)
		if p.DefaultCode == "" {
			return PhonePolicy{}, fmt.Errorf("phone policy %q needs DEFAULT_COUNTRY_CODE", cfg.PhonePolicy)
		}
		return p, nil
	default:
		return PhonePolicy{}, fmt.Errorf("unknown phone policy %q", cfg.PhonePolicy)
	}
}

func (p PhonePolicy) String() string {
	if p.DefaultCode == "" {
		return environments.PhonePolicyRequireExplicit
	}
	return environments.PhonePolicyPrependDefault + "(" + p.DefaultCode + ")"
}

// Normalize returns the dispatchable form of an already trimmed phone.
func (p PhonePolicy) Normalize(phone string) (string, error) {
	if strings.HasPrefix(phone, "+") {
		return phone, nil
	}
	if p.DefaultCode == "" {
		return "", ErrMissingCountryCode
	}

	local := strings.TrimLeft(phone, "0")
	if local == "" {
		return "", ErrMissingCountryCode
	}
	return p.DefaultCode + local, nil
}
