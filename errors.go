package treetask

import "errors"

// Sentinel errors for the programmer-misuse conditions this package
// detects. Per spec.md §7 these are not part of the happy path - callers
// that hit one have a bug - but each is still a named, wrapped error rather
// than a bare string, the same convention the teacher's per-package
// errors.go files use (e.g. internal/storage/wal/errors.go's ErrCorruptedWAL,
// ErrWALClosed).
var (
	// ErrAlreadyStarted is returned (wrapped in a panic) when a TaskBuilder's
	// Start is called more than once.
	ErrAlreadyStarted = errors.New("task already started")

	// ErrNotInWorker is returned (wrapped in a panic) when ChildTask is
	// called with the zero TaskHandle - what CurrentTask returns when the
	// caller is not running inside a worker's closure.
	ErrNotInWorker = errors.New("must be called with a task handle from within a running task")

	// ErrServiceShuttingDown is returned (wrapped in a panic) when a Task is
	// started against a Service that has already begun Shutdown.
	ErrServiceShuttingDown = errors.New("service is shutting down")

	// ErrMutexDestroying is returned (wrapped in a panic) when a Mutex
	// builder method is called after Close has begun tearing the Mutex down.
	ErrMutexDestroying = errors.New("mutex is being closed")
)
