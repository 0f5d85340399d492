package treetask

import (
	"runtime"
	"strconv"
	"sync"
)

// currentTaskRegistry maps the calling goroutine to the Task it is
// currently executing on behalf of. This is the Go stand-in for the
// original's thread_local currentTask_ pointer: workers are long-lived
// goroutines, so the registry only ever holds one entry per worker at a
// time, and is empty for any goroutine that never entered a worker's exec
// loop (matching the spec's requirement that Service.CurrentTask() reads
// None from a non-worker thread).
//
// No library in the retrieved pack provides goroutine-local storage, so
// this parses the goroutine id out of a runtime.Stack dump - the same
// technique used by several community debugging/leak-detection tools -
// rather than threading an explicit context handle through every exec call,
// which would break the zero-argument Service.CurrentTask() contract the
// spec requires.
type currentTaskRegistry struct {
	mu sync.Mutex
	m  map[int64]*Task
}

func (r *currentTaskRegistry) set(task *Task) {
	id := goroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.m = make(map[int64]*Task)
	}
	if task == nil {
		delete(r.m, id)
		return
	}
	r.m[id] = task
}

func (r *currentTaskRegistry) get() *Task {
	id := goroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[id]
}

// goroutineID extracts the numeric id Go's runtime assigns the calling
// goroutine from the "goroutine N [state]:" header of a stack dump. It is
// only ever used to key currentTaskRegistry and is never exposed outside
// this package.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if len(b) < len(prefix) || string(b[:len(prefix)]) != prefix {
		return 0
	}
	b = b[len(prefix):]

	end := 0
	for end < len(b) && b[end] != ' ' {
		end++
	}

	id, err := strconv.ParseInt(string(b[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
