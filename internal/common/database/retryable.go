package database

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgconn"
)

// Postgres error classes that indicate a transient condition rather than a
// problem with the statement itself.
var retryablePgErrorCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"55P03": true, // lock_not_available
	"57P03": true, // cannot_connect_now
}

var retryablePgErrorClasses = []string{
	"08", // connection exceptions
	"53", // insufficient resources
}

// IsRetryableError reports whether err indicates a transient failure that may
// succeed on a subsequent attempt, as opposed to an error that will recur for
// the same input.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if retryablePgErrorCodes[pgErr.Code] {
			return true
		}
		for _, class := range retryablePgErrorClasses {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
