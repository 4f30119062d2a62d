// Package timeouts defines shared timeout constants used across the tools.
package timeouts

import "time"

// Shutdown limits how long telemetry providers may flush on exit.
const Shutdown = 5 * time.Second

// Step caps a single scenario step or ledger submission.
const Step = 10 * time.Second

// StoreBusy is how long sqlite waits on a locked database before failing.
const StoreBusy = 5 * time.Second
