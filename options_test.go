package ftp

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithTimeout(t *testing.T) {
	t.Parallel()
	c := &Client{}
	require.NoError(t, WithTimeout(5*time.Second)(c))
	require.Equal(t, 5*time.Second, c.timeout)
}

func TestWithLogger(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	c := &Client{}
	require.NoError(t, WithLogger(logger)(c))
	require.Same(t, logger, c.logger)
}

func TestWithDialer(t *testing.T) {
	t.Parallel()
	dialer := &net.Dialer{Timeout: time.Second}
	c := &Client{}
	require.NoError(t, WithDialer(dialer)(c))
	require.Same(t, dialer, c.dialer)
}
