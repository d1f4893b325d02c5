package main

import (
	"errors"
	"fmt"

	"tpgci/src/config"
	"tpgci/src/registry"
	"tpgci/src/render"
	"tpgci/src/sanitize"
	"tpgci/src/store"
	"tpgci/src/validate"
)

// errOutOfDate is returned by generate --check when files on disk differ.
var errOutOfDate = errors.New("generated files are out of date")

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts known failures to user-friendly messages
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return err
	}

	var verr *validate.Error
	switch {
	case errors.Is(err, config.ErrUnknownEnvironment):
		return &UserError{
			Message: "Unknown environment",
			Hint:    "Set TPGCI_ENVIRONMENT to public or private.",
			Err:     err,
		}
	case errors.Is(err, registry.ErrNotFound):
		return &UserError{
			Message: "Unknown package",
			Hint:    "TPGCI_FEATURE_BRANCH_PACKAGES must list package names from the service tables.",
			Err:     err,
		}
	case errors.Is(err, sanitize.ErrInvalidID):
		return &UserError{
			Message: "Invalid identifier",
			Hint:    "TPGCI_ROOT_PROJECT_ID must start with a letter and contain only letters, digits and underscores.",
			Err:     err,
		}
	case errors.As(err, &verr):
		return &UserError{
			Message: "The generated tree breaks its invariants",
			Hint:    "Run `tpgci validate` to list every violation.",
			Err:     err,
		}
	case errors.Is(err, store.ErrNotFound):
		return &UserError{
			Message: "No snapshot saved yet",
			Hint:    "Run `tpgci snapshot save` first.",
			Err:     err,
		}
	case errors.Is(err, render.ErrForeignFile):
		return &UserError{
			Message: "The output directory holds files tpgci did not generate",
			Hint:    "Pick an --out directory reserved for generated files, or move the listed files away.",
			Err:     err,
		}
	case errors.Is(err, errOutOfDate):
		return &UserError{
			Message: "Generated files are out of date",
			Hint:    "Run `tpgci generate --out DIR` and commit the result.",
			Err:     err,
		}
	}

	return err
}
