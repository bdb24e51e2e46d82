package intrinsic

import (
	"reflect"
	"strings"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/outofforest/structarray/ctor"
	"github.com/outofforest/structarray/errs"
)

// State enumerates slot lifecycle states.
type State uint8

const (
	// StateUnconstructed means the slot has never been constructed.
	StateUnconstructed State = iota

	// StateUnderConstruction means the slot's constructor is running.
	StateUnderConstruction

	// StateConstructed means the slot holds a fully constructed object.
	StateConstructed
)

// Slot embeds exactly one sub-object inside a container field. The field must
// be unexported and hold the slot by value; both rules keep the embedded
// object single-owner. The zero value is an unconstructed slot.
//
// The state field must stay first: sibling slots of other element types are
// inspected through it at a fixed offset.
type Slot[T any] struct {
	state         State
	checked       bool
	container     unsafe.Pointer
	containerType reflect.Type
	value         T
}

// State returns the lifecycle state of the slot.
func (s *Slot[T]) State() State {
	return s.state
}

// Get returns the embedded object. It fails while this slot, or any other
// slot declared on the same container, has not finished construction:
// partially constructed containers must not be observably usable.
func (s *Slot[T]) Get() (*T, error) {
	if s.state != StateConstructed {
		return nil, errors.Wrapf(errs.ErrInvalidState, "premature access to unconstructed %s slot", typeName[T]())
	}
	if !s.checked {
		// A constructed slot copied into another container still points at its
		// original owner; such aliases must not be readable.
		if offset := uintptr(unsafe.Pointer(s)) - uintptr(s.container); offset >= s.containerType.Size() {
			return nil, errors.Wrapf(errs.ErrInvalidState,
				"slot of %s is aliased outside its owning container", typeName[T]())
		}
		if err := checkContainer(s.container, s.containerType); err != nil {
			return nil, err
		}
		s.checked = true
	}
	return &s.value, nil
}

// Construct builds the object embedded in the named slot field of container.
// It may run once per (container instance, field name) pair; the slot is
// inaccessible before every sibling slot of the container has been
// constructed as well.
func Construct[T any](container any, fieldName string, ca *ctor.CtorAndArgs[T]) error {
	slot, err := slotOf[T](container, fieldName)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(container)
	if slot.container != nil && slot.container != rv.UnsafePointer() {
		return errors.Wrapf(errs.ErrInvalidState,
			"slot %q already belongs to another container instance", fieldName)
	}

	switch slot.state {
	case StateUnconstructed:
	case StateUnderConstruction:
		return errors.Wrapf(errs.ErrInvalidState, "slot %q is already under construction", fieldName)
	default:
		return errors.Wrapf(errs.ErrInvalidState, "slot %q is constructed twice", fieldName)
	}

	slot.state = StateUnderConstruction
	slot.container = rv.UnsafePointer()
	slot.containerType = rv.Type().Elem()
	if err := ctor.Construct(ca, &slot.value); err != nil {
		slot.state = StateUnconstructed
		return err
	}
	slot.state = StateConstructed
	return nil
}

// ConstructWith builds the object embedded in the named slot field of
// container using a plain initializer function.
func ConstructWith[T any](container any, fieldName string, fn func(value *T) error) error {
	return Construct(container, fieldName, &ctor.CtorAndArgs[T]{
		Ctor: func() (T, error) {
			var value T
			err := fn(&value)
			return value, err
		},
	})
}

func slotOf[T any](container any, fieldName string) (*Slot[T], error) {
	rv := reflect.ValueOf(container)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrap(errs.ErrInvalidArgument, "container must be a non-nil pointer to a struct")
	}

	structType := rv.Type().Elem()
	field, ok := structType.FieldByName(fieldName)
	if !ok {
		return nil, errors.Wrapf(errs.ErrInvalidArgument, "%s has no field %q", structType, fieldName)
	}
	if field.PkgPath == "" {
		return nil, errors.Wrapf(errs.ErrInvalidArgument,
			"slot field %q must not be visible beyond its container", fieldName)
	}
	if field.Type.Kind() == reflect.Ptr {
		return nil, errors.Wrapf(errs.ErrInvalidArgument,
			"slot field %q must hold the slot by value to stay single-assignment", fieldName)
	}
	if field.Type != reflect.TypeFor[Slot[T]]() {
		return nil, errors.Wrapf(errs.ErrInvalidArgument, "field %q of %s is not a %s slot",
			fieldName, structType, typeName[T]())
	}

	// Slot fields are unexported, so they are reached through the field
	// offset rather than reflect's setters.
	return (*Slot[T])(unsafe.Add(rv.UnsafePointer(), field.Offset)), nil
}

func checkContainer(container unsafe.Pointer, containerType reflect.Type) error {
	for i := range containerType.NumField() {
		field := containerType.Field(i)
		if !isSlotType(field.Type) {
			continue
		}
		state := (*State)(unsafe.Add(container, field.Offset))
		if *state != StateConstructed {
			return errors.Wrapf(errs.ErrInvalidState,
				"premature access: sibling slot %q of %s is not constructed", field.Name, containerType)
		}
	}
	return nil
}

var slotPkgPath = reflect.TypeFor[Slot[struct{}]]().PkgPath()

func isSlotType(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.PkgPath() == slotPkgPath && strings.HasPrefix(t.Name(), "Slot[")
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
