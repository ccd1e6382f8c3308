package database

import (
	"context"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCreateConnectionString(t *testing.T) {
	assert.Equal(t, "", CreateConnectionString(map[string]string{}))
	assert.Equal(t, "host='localhost' ", CreateConnectionString(map[string]string{"host": "localhost"}))
	assert.Equal(t, `password='pa\'ss' `, CreateConnectionString(map[string]string{"password": "pa'ss"}))
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(errors.New("some application error")))

	assert.True(t, IsRetryableError(context.DeadlineExceeded))
	assert.True(t, IsRetryableError(syscall.ECONNREFUSED))
	assert.True(t, IsRetryableError(errors.Wrap(syscall.ECONNRESET, "writing rows")))
	assert.True(t, IsRetryableError(&net.OpError{Op: "dial", Err: errors.New("timeout")}))

	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "40P01"}), "deadlocks are retryable")
	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "08006"}), "connection failures are retryable")
	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "53300"}), "too many connections is retryable")
	assert.False(t, IsRetryableError(&pgconn.PgError{Code: "42P01"}), "undefined table is not retryable")
	assert.False(t, IsRetryableError(&pgconn.PgError{Code: "23505"}), "unique violations are not retryable")
}
