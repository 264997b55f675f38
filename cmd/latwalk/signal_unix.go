//go:build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals makes `latwalk serve` shut its walk server down on SIGINT
// or SIGTERM.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
