package main

import (
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WaitsForShutdown(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	stopped := make(chan struct{})
	var drained atomic.Bool

	start := func() error {
		<-stopped
		return http.ErrServerClosed
	}
	shutdown := func() {
		// The listener closes first; draining finishes afterwards.
		close(stopped)
		time.Sleep(50 * time.Millisecond)
		drained.Store(true)
	}

	sigCh <- syscall.SIGTERM
	err := run(start, sigCh, shutdown)

	require.NoError(t, err)
	assert.True(t, drained.Load(), "run returned before shutdown finished")
}

func TestRun_ReturnsStartError(t *testing.T) {
	sigCh := make(chan os.Signal)
	listenErr := errors.New("listen tcp :8080: address already in use")

	err := run(func() error { return listenErr }, sigCh, func() {})

	assert.ErrorIs(t, err, listenErr)
}
