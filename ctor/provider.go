package ctor

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/outofforest/structarray/errs"
)

// CtorAndArgs pairs a constructor with the arguments to call it with. Ctor
// must be a non-variadic function returning the element type, optionally with
// a trailing error.
type CtorAndArgs[T any] struct {
	Ctor any
	Args []any
}

// CtorAndArgsProvider decides how each element is built. ForContext is called
// once per element in coordinate order during a construction pass. The driver
// hands the bundle back through Recycle once the element is constructed; a
// provider is free to ignore that and return a fresh bundle every time.
type CtorAndArgsProvider[T any] interface {
	ForContext(c *Context) (*CtorAndArgs[T], error)
	Recycle(ca *CtorAndArgs[T])
}

// NewFixed creates a provider returning the same constructor and arguments
// for every element.
func NewFixed[T any](ctorFn any, args ...any) *Fixed[T] {
	return &Fixed[T]{
		bundle: CtorAndArgs[T]{Ctor: ctorFn, Args: args},
	}
}

// Fixed ignores the construction context entirely.
type Fixed[T any] struct {
	bundle CtorAndArgs[T]
}

// ForContext implements CtorAndArgsProvider.
func (p *Fixed[T]) ForContext(_ *Context) (*CtorAndArgs[T], error) {
	return &p.bundle, nil
}

// Recycle implements CtorAndArgsProvider.
func (p *Fixed[T]) Recycle(_ *CtorAndArgs[T]) {}

// NewFunc creates a provider delegating to fn. A fresh bundle is expected on
// every call, nothing is recycled.
func NewFunc[T any](fn func(c *Context) (*CtorAndArgs[T], error)) *Func[T] {
	return &Func[T]{fn: fn}
}

// Func adapts a plain function to the provider protocol.
type Func[T any] struct {
	fn func(c *Context) (*CtorAndArgs[T], error)
}

// ForContext implements CtorAndArgsProvider.
func (p *Func[T]) ForContext(c *Context) (*CtorAndArgs[T], error) {
	return p.fn(c)
}

// Recycle implements CtorAndArgsProvider.
func (p *Func[T]) Recycle(_ *CtorAndArgs[T]) {}

// NewSingleton creates a provider reusing one mutable argument bundle across
// an entire bulk build. fill writes the arguments for the given context into
// args. As long as the driver recycles the bundle after every element, a bulk
// build of N elements costs O(1) bundle allocations.
func NewSingleton[T any](ctorFn any, numOfArgs int, fill func(c *Context, args []any)) *Singleton[T] {
	return &Singleton[T]{
		bundle: CtorAndArgs[T]{Ctor: ctorFn, Args: make([]any, numOfArgs)},
		free:   true,
		fill:   fill,
	}
}

// Singleton is the caching flavor of the provider protocol. It is
// single-writer: concurrent builds must not share one instance.
type Singleton[T any] struct {
	bundle CtorAndArgs[T]
	free   bool
	fill   func(c *Context, args []any)
}

// ForContext implements CtorAndArgsProvider.
func (p *Singleton[T]) ForContext(c *Context) (*CtorAndArgs[T], error) {
	ca := &p.bundle
	if p.free {
		p.free = false
	} else {
		// The driver declined to recycle, fall back to a fresh bundle.
		ca = &CtorAndArgs[T]{Ctor: p.bundle.Ctor, Args: make([]any, len(p.bundle.Args))}
	}
	p.fill(c, ca.Args)
	return ca, nil
}

// Recycle implements CtorAndArgsProvider.
func (p *Singleton[T]) Recycle(ca *CtorAndArgs[T]) {
	if ca == &p.bundle {
		p.free = true
	}
}

// Construct builds one element into target by calling the constructor from
// the bundle. The constructor signature is validated against the arguments;
// incompatibility surfaces as ErrNoMatchingConstructor.
func Construct[T any](ca *CtorAndArgs[T], target *T) error {
	if ca.Ctor == nil {
		if len(ca.Args) > 0 {
			return errors.Wrapf(errs.ErrNoMatchingConstructor,
				"%d arguments provided without a constructor", len(ca.Args))
		}
		var zero T
		*target = zero
		return nil
	}

	fn := reflect.ValueOf(ca.Ctor)
	fnType := fn.Type()
	if fnType.Kind() != reflect.Func || fnType.IsVariadic() {
		return errors.Wrapf(errs.ErrNoMatchingConstructor, "%s is not a plain constructor function", fnType)
	}
	if fnType.NumIn() != len(ca.Args) {
		return errors.Wrapf(errs.ErrNoMatchingConstructor,
			"constructor %s takes %d arguments, %d provided", fnType, fnType.NumIn(), len(ca.Args))
	}

	elemType := reflect.TypeOf(target).Elem()
	switch {
	case fnType.NumOut() == 1 && fnType.Out(0).AssignableTo(elemType):
	case fnType.NumOut() == 2 && fnType.Out(0).AssignableTo(elemType) &&
		fnType.Out(1) == reflect.TypeFor[error]():
	default:
		return errors.Wrapf(errs.ErrNoMatchingConstructor,
			"constructor %s does not produce %s", fnType, elemType)
	}

	in := make([]reflect.Value, 0, len(ca.Args))
	for i, arg := range ca.Args {
		paramType := fnType.In(i)
		if arg == nil {
			switch paramType.Kind() {
			case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
				in = append(in, reflect.Zero(paramType))
				continue
			default:
				return errors.Wrapf(errs.ErrNoMatchingConstructor,
					"nil is not a valid %s for argument %d of %s", paramType, i, fnType)
			}
		}
		argValue := reflect.ValueOf(arg)
		if !argValue.Type().AssignableTo(paramType) {
			return errors.Wrapf(errs.ErrNoMatchingConstructor,
				"argument %d of %s requires %s, got %s", i, fnType, paramType, argValue.Type())
		}
		in = append(in, argValue)
	}

	out := fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		//nolint:forcetypeassert
		return errors.WithStack(out[1].Interface().(error))
	}
	// Set honors assignability, a plain type assertion would not.
	reflect.ValueOf(target).Elem().Set(out[0])
	return nil
}
