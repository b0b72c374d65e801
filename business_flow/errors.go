// Package businessflow contains the core business logic and use cases for estimation workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Lead-related errors
	ErrLeadNotFound     = errors.New("lead not found")
	ErrLeadUUIDRequired = errors.New("lead UUID is required")

	// Estimate-related errors
	ErrQuickEstimateNotFound    = errors.New("quick estimate not found")
	ErrDetailedEstimateNotFound = errors.New("detailed estimate not found")
	ErrEstimateNotDraft         = errors.New("estimate is not a draft")
	ErrEstimateLineNotFound     = errors.New("estimate line not found")
	ErrInvalidStatusTransition  = errors.New("invalid estimate status transition")
	ErrNoLinesResolved          = errors.New("no line items resolved for estimate")
	ErrEstimateVersionConflict  = errors.New("a concurrent estimate creation claimed this version")

	// Pricing rule errors
	ErrPricingRuleNotFound      = errors.New("pricing rule not found")
	ErrPricingRuleKeyExists     = errors.New("pricing rule key already exists")
	ErrActiveRuleConflict       = errors.New("an active rule already exists for this category and match value")
	ErrPricingRuleKindMismatch  = errors.New("rule operands do not match the rule kind")
	ErrPricingRuleUpdateMissing = errors.New("at least one field must be provided for update")

	// Catalog errors
	ErrLineItemNotFound      = errors.New("line item not found")
	ErrItemCodeExists        = errors.New("item code already exists")
	ErrLineItemInactive      = errors.New("line item is inactive")
	ErrInvalidFormula        = errors.New("quantity formula is invalid")
	ErrCatalogEmpty          = errors.New("line item catalog is empty")
	ErrLineItemUpdateMissing = errors.New("at least one field must be provided for update")

	// Macro errors
	ErrMacroNotFound      = errors.New("estimate macro not found")
	ErrMacroNameExists    = errors.New("macro name already exists")
	ErrMacroItemDuplicate = errors.New("line item already attached to macro")
	ErrMacroItemNotFound  = errors.New("line item not attached to macro")
	ErrMacroEmpty         = errors.New("macro has no line items")

	// Region errors
	ErrRegionNotFound      = errors.New("pricing region not found")
	ErrRegionNameExists    = errors.New("region name already exists")
	ErrRegionUpdateMissing = errors.New("at least one field must be provided for update")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsLeadNotFound(err error) bool {
	return errors.Is(err, ErrLeadNotFound)
}

func IsQuickEstimateNotFound(err error) bool {
	return errors.Is(err, ErrQuickEstimateNotFound)
}

func IsDetailedEstimateNotFound(err error) bool {
	return errors.Is(err, ErrDetailedEstimateNotFound)
}

func IsEstimateNotDraft(err error) bool {
	return errors.Is(err, ErrEstimateNotDraft)
}

func IsEstimateLineNotFound(err error) bool {
	return errors.Is(err, ErrEstimateLineNotFound)
}

func IsInvalidStatusTransition(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition)
}

func IsNoLinesResolved(err error) bool {
	return errors.Is(err, ErrNoLinesResolved)
}

func IsEstimateVersionConflict(err error) bool {
	return errors.Is(err, ErrEstimateVersionConflict)
}

func IsPricingRuleNotFound(err error) bool {
	return errors.Is(err, ErrPricingRuleNotFound)
}

func IsPricingRuleKeyExists(err error) bool {
	return errors.Is(err, ErrPricingRuleKeyExists)
}

func IsActiveRuleConflict(err error) bool {
	return errors.Is(err, ErrActiveRuleConflict)
}

func IsPricingRuleKindMismatch(err error) bool {
	return errors.Is(err, ErrPricingRuleKindMismatch)
}

func IsLineItemNotFound(err error) bool {
	return errors.Is(err, ErrLineItemNotFound)
}

func IsItemCodeExists(err error) bool {
	return errors.Is(err, ErrItemCodeExists)
}

func IsLineItemInactive(err error) bool {
	return errors.Is(err, ErrLineItemInactive)
}

func IsInvalidFormula(err error) bool {
	return errors.Is(err, ErrInvalidFormula)
}

func IsCatalogEmpty(err error) bool {
	return errors.Is(err, ErrCatalogEmpty)
}

func IsMacroNotFound(err error) bool {
	return errors.Is(err, ErrMacroNotFound)
}

func IsMacroNameExists(err error) bool {
	return errors.Is(err, ErrMacroNameExists)
}

func IsMacroItemDuplicate(err error) bool {
	return errors.Is(err, ErrMacroItemDuplicate)
}

func IsMacroItemNotFound(err error) bool {
	return errors.Is(err, ErrMacroItemNotFound)
}

func IsMacroEmpty(err error) bool {
	return errors.Is(err, ErrMacroEmpty)
}

func IsRegionNotFound(err error) bool {
	return errors.Is(err, ErrRegionNotFound)
}

func IsRegionNameExists(err error) bool {
	return errors.Is(err, ErrRegionNameExists)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
