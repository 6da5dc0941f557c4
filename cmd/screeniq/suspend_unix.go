//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/screeniq/internal/media"
)

// watchSuspend reports a suspend and resume of the process (Ctrl-Z, fg) as the
// page being hidden and shown again.
func watchSuspend(bus *media.VisibilityBus) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGCONT)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ch:
				bus.Publish(media.Hidden)
				bus.Publish(media.Visible)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
