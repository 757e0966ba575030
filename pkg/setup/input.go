package setup

import (
	"net/mail"
	"strings"

	"github.com/arthur-debert/stackops/pkg/errors"
)

// ValidateDomain checks that s looks like a fully qualified host name
func ValidateDomain(s string) error {
	if s == "" {
		return errors.New(errors.ErrInvalidInput, "domain is required")
	}
	if len(s) > 253 || !strings.Contains(s, ".") || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return errors.Newf(errors.ErrInvalidInput, "invalid domain %q", s).WithDetail("domain", s)
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" || len(label) > 63 || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return errors.Newf(errors.ErrInvalidInput, "invalid domain %q", s).WithDetail("domain", s)
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
				return errors.Newf(errors.ErrInvalidInput, "invalid domain %q", s).WithDetail("domain", s)
			}
		}
	}
	return nil
}

// ValidateEmail checks that s is a bare email address
func ValidateEmail(s string) error {
	if s == "" {
		return errors.New(errors.ErrInvalidInput, "email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errors.Newf(errors.ErrInvalidInput, "invalid email %q", s).WithDetail("email", s)
	}
	return nil
}

// Validate checks the operator input required by the stages
func (rc RunContext) Validate() error {
	if err := ValidateDomain(rc.Domain); err != nil {
		return err
	}
	return ValidateEmail(rc.Email)
}
