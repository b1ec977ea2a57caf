package wiki

import (
	"errors"
	"fmt"

	"github.com/aretw0/mdwiki/pkg/core"
)

func asFieldError(err error) (*core.FieldError, bool) {
	var fe *core.FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// fieldError turns a 400 or 409 reply into a named field message. Other
// errors are returned unchanged.
func fieldError(err error, field, malformed, conflict string) error {
	switch {
	case errors.Is(err, core.ErrConflict):
		return &core.FieldError{Field: field, Message: conflict, Kind: err}
	case errors.Is(err, core.ErrMalformed):
		return &core.FieldError{Field: field, Message: malformed, Kind: err}
	}
	return err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
