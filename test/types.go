package test

// Element is the heavyweight element type used across tests.
type Element struct {
	Index int64
	Value int64
}

// NewElement creates an element.
func NewElement(index, value int64) Element {
	return Element{Index: index, Value: value}
}

// SealedElement carries a write-once field beside a mutable one.
type SealedElement struct {
	ID    int64 `layout:"final"`
	Value int64
}

// NestedSealedElement hides the write-once field one struct level down.
type NestedSealedElement struct {
	Sealed SealedElement
	Extra  int64
}
