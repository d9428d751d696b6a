// Package validator provides field-keyed validation errors and small rule
// helpers used by per-field transition guards.
//
// A Rule pairs a boolean Check with the ValidationError reported when the
// check fails. Apply evaluates rules and aggregates failures into
// ValidationErrors, a slice type that satisfies the error interface so that
// multiple field problems travel through a single error return.
//
// # Usage
//
//	err := validator.Apply(
//	    validator.Required("title", doc.Title),
//	    validator.MaxLen("title", doc.Title, 120),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    for _, field := range verrs.Fields() {
//	        // ...
//	    }
//	}
//
// Reason turns a rule into the "empty string means valid" form expected by
// statemachine.FieldCheck.
package validator
