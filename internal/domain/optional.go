package domain

// Optional holds a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	value T
	valid bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] { return Optional[T]{value: v, valid: true} }

// None returns an absent value.
func None[T any]() Optional[T] { return Optional[T]{} }

// FromPtr converts a nil-able pointer into an Optional.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.valid }

func (o Optional[T]) Valid() bool { return o.valid }

// Or returns the value, or fallback when absent.
func (o Optional[T]) Or(fallback T) T {
	if o.valid {
		return o.value
	}
	return fallback
}

// Ptr returns a pointer copy of the value, nil when absent.
func (o Optional[T]) Ptr() *T {
	if !o.valid {
		return nil
	}
	v := o.value
	return &v
}

// FirstOf returns the first present option in priority order.
func FirstOf[T any](opts ...Optional[T]) Optional[T] {
	for _, o := range opts {
		if o.valid {
			return o
		}
	}
	return None[T]()
}
