// Package workers provides the client's background workers.
// It defines the Worker interface and a Workers aggregate that starts
// several workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run must not block: implementations spawn their own goroutines and stop
// them when ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}
