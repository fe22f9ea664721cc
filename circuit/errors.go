package circuit

import (
	"errors"
	"fmt"
)

// ErrInvalidQuorum is returned when a circuit is requested for fewer than one signature.
var ErrInvalidQuorum = errors.New("quorum must be at least 1")

// LengthError reports a byte slice whose length differs from a fixed wire layout.
type LengthError struct {
	What string
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("invalid %s length %d, expect %d", e.What, e.Got, e.Want)
}

// FormatError reports a decoded witness that this circuit cannot represent.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported format: %s: %v", e.Reason, e.Err)
	}
	return "unsupported format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// QuorumError reports a VAA carrying fewer signatures than the circuit's threshold.
type QuorumError struct {
	Required int
	Actual   int
}

func (e *QuorumError) Error() string {
	return fmt.Sprintf("only have %d signatures, expect %d at least", e.Actual, e.Required)
}

// SignatureError reports a signature that cannot be allocated.
type SignatureError struct {
	Index int
	Err   error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("signature %d: %v", e.Index, e.Err)
}

func (e *SignatureError) Unwrap() error { return e.Err }
