// Package adapter holds the failure taxonomy shared by every outbound
// gateway (news source, datastore, LLM, encyclopedia). Callers classify
// with errors.Is against the exported sentinels.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

var (
	ErrTimeout          = errors.New("adapter timeout")
	ErrBadStatus        = errors.New("adapter bad status")
	ErrMalformedPayload = errors.New("adapter malformed payload")
)

// Wrap tags err with the given marker while keeping the adapter and
// operation context in the message. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, name, operation string, err error) error {
	detail := buildDetail(name, operation)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// BadStatus builds an ErrBadStatus for an unexpected HTTP response code.
func BadStatus(name, operation string, code int) error {
	return fmt.Errorf("%w: %s: status %d", ErrBadStatus, buildDetail(name, operation), code)
}

// FromTransport normalizes a transport-level error into the taxonomy.
// Connection and deadline failures all surface as ErrTimeout; the caller
// only needs to know the gateway never produced a usable response.
func FromTransport(name, operation string, err error) error {
	if err == nil {
		return nil
	}
	return Wrap(ErrTimeout, name, operation, err)
}

// IsTimeout reports whether err is a deadline or network-timeout failure.
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
}

func buildDetail(name, operation string) string {
	parts := make([]string, 0, 2)
	if name = strings.TrimSpace(name); name != "" {
		parts = append(parts, name)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "adapter failure"
	}
	return strings.Join(parts, ": ")
}
