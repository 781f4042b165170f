package catalog

import (
	"fmt"

	"scramble/internal/schema"
)

// ConversionError reports a single cell that could not be converted between
// two type tags. The executor decides what to do with it: inject NULL on a
// nullable column or abort the run on a non-nullable one.
type ConversionError struct {
	From   schema.TypeTag
	To     schema.TypeTag
	Value  any
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s to %s: %s (value %v)", e.From, e.To, e.Reason, e.Value)
}
