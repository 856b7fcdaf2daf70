package lookup

import "fmt"

// Kind classifies a failure.
type Kind int

const (
	NotFound Kind = iota
	Transport
	Parse
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Transport:
		return "transport"
	case Parse:
		return "parse"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is the failed outcome of a lookup.
type Failure struct {
	Kind    Kind
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// Result is either a value or a failure.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok returns a successful result.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail returns a failed result.
func Fail[T any](kind Kind, format string, args ...any) Result[T] {
	return Result[T]{failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// FailWith returns a failed result carrying an existing failure.
func FailWith[T any](failure *Failure) Result[T] {
	return Result[T]{failure: failure}
}

func (r Result[T]) OK() bool {
	return r.failure == nil
}

// Value returns the value, or the zero value when the result is a failure.
func (r Result[T]) Value() T {
	if r.failure != nil {
		var zero T

		return zero
	}

	return r.value
}

// Failure returns the failure, or nil on success.
func (r Result[T]) Failure() *Failure {
	return r.failure
}
