//go:build !unix

package main

import "github.com/jonathan/screeniq/internal/media"

// watchSuspend is a no-op where the process cannot be suspended from the terminal.
func watchSuspend(*media.VisibilityBus) (stop func()) {
	return func() {}
}
