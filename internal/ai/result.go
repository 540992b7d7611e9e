package ai

import "fmt"

// Outcome says how an AI call ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeUnavailable means the endpoint could not be reached or answered with an error.
	OutcomeUnavailable
	// OutcomeMalformed means a reply arrived but did not have the requested shape.
	OutcomeMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the value of an AI call together with how the call ended. On any
// outcome other than OutcomeOK, Value is the operation's default and Err the cause.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeOK
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Outcome: OutcomeOK}
}

func failed[T any](def T, outcome Outcome, err error) Result[T] {
	return Result[T]{Value: def, Outcome: outcome, Err: err}
}
