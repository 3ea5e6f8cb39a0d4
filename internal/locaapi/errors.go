package locaapi

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error categories used by the coordinator to decide between re-auth and
// backoff. Always matched with errors.Is.
var (
	ErrAuth      = errors.New("authentication rejected")
	ErrConn      = errors.New("connection failed")
	ErrTimeout   = errors.New("request timed out")
	ErrRateLimit = errors.New("rate limit exceeded")
)

// classifyTransportErr maps a transport failure to ErrTimeout or ErrConn.
func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrConn, err)
}
