// Package validation provides input validation for API handlers.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type SaveEntryRequest struct {
//	    Caller string `json:"caller" validate:"max=128"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.OneOf("model", model, transcription.ModelNames())
//	err := v.Validate()
package validation
