package service

import (
	"fmt"

	"github.com/acadrisk/acadrisk/internal/domain/valueobject"
)

// Fail classes in lookup order.
var (
	FailClassNumeric = valueobject.NumericClass(0)
	FailClassNamed   = valueobject.NamedClass("Fail")
)

// ResolveFailIndex locates the fail class in the oracle's class ordering:
// the numeric class 0 if present, otherwise the named class "Fail".
func ResolveFailIndex(ordering valueobject.ClassOrdering) (int, error) {
	if i := ordering.IndexOf(FailClassNumeric); i >= 0 {
		return i, nil
	}
	if i := ordering.IndexOf(FailClassNamed); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: class ordering %v has no fail class", ErrSchemaMismatch, ordering)
}
