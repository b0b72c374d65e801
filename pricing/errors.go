// Package pricing implements the roofing estimation engine: geometry
// resolution, the quick pricing rule interpreter, the quantity formula
// evaluator, and the detailed estimate calculator. Everything in this
// package is pure; loading rules and persisting results belongs to the
// business flow layer.
package pricing

import "errors"

var (
	ErrNegativeMeasurement = errors.New("measurement must not be negative")
	ErrPitchOutOfRange     = errors.New("pitch must be between 0/12 and 24/12")

	ErrUnknownVariable = errors.New("unknown variable in formula")
	ErrInvalidFormula  = errors.New("invalid formula")
	ErrDivisionByZero  = errors.New("division by zero in formula")

	ErrOverheadOutOfRange = errors.New("overhead percent must be between 0 and 50")
	ErrProfitOutOfRange   = errors.New("profit percent must be between 0 and 50")
	ErrTaxOutOfRange      = errors.New("tax percent must not be negative")
)
