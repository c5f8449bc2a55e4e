package server

import "time"

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

// shutdownTimeout bounds the listener drain plus the wait for an in-flight
// scheduled collection to checkpoint. Tests override it.
var shutdownTimeout = 10 * time.Second
