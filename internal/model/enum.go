package model

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports one invalid field of a record.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err carries at least one ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// enum is implemented by every closed string enumeration in this package.
type enum interface {
	~string
	Valid() bool
}

func parseEnum[E enum](field string, raw []byte, allowed []E) (E, error) {
	v := E(raw)
	if !v.Valid() {
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		return v, invalid(field, "%q is not one of %s", string(raw), strings.Join(names, ", "))
	}
	return v, nil
}

func checkEnum[E enum](field string, v E, allowed []E) error {
	_, err := parseEnum(field, []byte(v), allowed)
	return err
}
