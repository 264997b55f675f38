//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals makes `latwalk serve` shut its walk server down on Ctrl+C.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
