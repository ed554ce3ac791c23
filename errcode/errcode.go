package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Configuration-load failures. Load is all-or-nothing: any of these
	// leaves the previously active configuration untouched.
	DuplicateID      Code = "duplicate_id"
	InvalidRange     Code = "invalid_range"
	CapacityExceeded Code = "capacity_exceeded"
	DanglingRef      Code = "dangling_ref"
	CyclicGraph      Code = "cyclic_graph"
	InvalidParams    Code = "invalid_params"
	InvalidPayload   Code = "invalid_payload"
	UnknownOp        Code = "unknown_op"

	// Registry write guards.
	InvalidDirection Code = "invalid_direction"
	UnknownChannel   Code = "unknown_channel"

	// Engine fatal path.
	StateCorrupt Code = "state_corrupt"

	// Collaborator plumbing.
	Busy         Code = "busy"
	Unsupported  Code = "unsupported"
	InvalidTopic Code = "invalid_topic"
	UnknownPin   Code = "unknown_pin"
	PinInUse     Code = "pin_in_use"
	Timeout      Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
