package types

import (
	"errors"
	"fmt"
)

// TransportError represents a failure of the netlink session
type TransportError struct {
	Op    TransportOp
	Cause error // Underlying error
}

// TransportOp represents the netlink session step that failed
type TransportOp int

// Transport operation constants
const (
	// OpSocket indicates the netlink socket could not be created or bound
	OpSocket TransportOp = iota
	// OpSubscribe indicates a multicast group could not be joined
	OpSubscribe
	// OpRequest indicates a dump request could not be sent or was answered with an error
	OpRequest
	// OpReceive indicates a receive failure on an established session
	OpReceive
)

// String returns a string representation of the transport operation
func (op TransportOp) String() string {
	switch op {
	case OpSocket:
		return "socket"
	case OpSubscribe:
		return "subscribe"
	case OpRequest:
		return "request"
	case OpReceive:
		return "receive"
	default:
		return "unknown"
	}
}

// Error implements the error interface for TransportError
func (te *TransportError) Error() string {
	return fmt.Sprintf("netlink %s: %v", te.Op.String(), te.Cause)
}

// Unwrap returns the underlying error
func (te *TransportError) Unwrap() error {
	return te.Cause
}

// IsTransportError returns true if err was raised by the netlink session
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
