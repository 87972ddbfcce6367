package main

import (
	"errors"
	"fmt"

	"budget/internal/core"
	"budget/internal/ports"
)

// userError turns store errors into the text an operator should see.
func userError(err error, entity string) error {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return errors.New(verr.Message())
	case errors.Is(err, ports.ErrNotFound):
		return fmt.Errorf("%s not found", entity)
	default:
		return err
	}
}
