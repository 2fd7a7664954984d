package common

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var interruptSignals = []os.Signal{
	os.Interrupt, os.Kill,
	syscall.SIGTERM, syscall.SIGQUIT,
}

// InterruptedContext returns a context canceled on the first interrupt signal.
func InterruptedContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, interruptSignals...)
}
