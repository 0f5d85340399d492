package treetask

import "fmt"

// TaskBuilder accumulates callbacks for a not-yet-started Task before
// handing it to a Service. Every constructor on Service and Mutex that
// creates a Task (Task, TopmostTask, ChildTask, and their Mutex-gated
// counterparts) returns one of these rather than starting the Task
// immediately, so callers can attach Succeeded/Interrupted/Finished before
// the closure has any chance of running concurrently with the attachment.
type TaskBuilder struct {
	task *Task
}

// Succeeded chains fn onto the succeeded callback slot. Fires only if the
// Task runs its closure to completion without ever being interrupted.
func (b *TaskBuilder) Succeeded(fn Callback) *TaskBuilder {
	b.task.callbacks.add(callbackSucceeded, fn)
	return b
}

// Interrupted chains fn onto the interrupted callback slot. Fires instead
// of Succeeded if the Task (or an ancestor) was interrupted by the time it
// finalizes, whether or not its closure ever ran.
func (b *TaskBuilder) Interrupted(fn Callback) *TaskBuilder {
	b.task.callbacks.add(callbackInterrupted, fn)
	return b
}

// Finished chains fn onto the finished callback slot. Fires exactly once
// per started Task, after Succeeded or Interrupted, regardless of outcome.
func (b *TaskBuilder) Finished(fn Callback) *TaskBuilder {
	b.task.callbacks.add(callbackFinished, fn)
	return b
}

// Start registers the Task with its Service and submits it for dispatch,
// returning a strong handle to it. Calling Start more than once on the same
// builder, or starting a Task against a Service that has already begun
// Shutdown, is a programmer error and panics, matching spec.md §7's
// programmer-error taxonomy.
func (b *TaskBuilder) Start() TaskHandle {
	if !b.task.started.CompareAndSwap(false, true) {
		panic(fmt.Errorf("treetask: TaskBuilder.Start: %w", ErrAlreadyStarted))
	}
	if b.task.service.isShuttingDown() {
		panic(fmt.Errorf("treetask: TaskBuilder.Start: %w", ErrServiceShuttingDown))
	}
	b.task.service.registerTask(b.task)
	b.task.start()
	return TaskHandle{task: b.task}
}

// TaskHandle is a strong, owning-in-spirit reference to a started Task. It
// never blocks and never extends the Task's lifetime beyond what the
// Service's own keepalive table already guarantees; it is only ever a
// capability to interrupt or inspect.
type TaskHandle struct {
	task *Task
}

// Interrupt marks the referenced Task (and, transitively, its subtree) for
// cooperative cancellation.
func (h TaskHandle) Interrupt() {
	h.task.Interrupt()
}

// IsInterrupted reports whether the referenced Task or an ancestor has been
// interrupted.
func (h TaskHandle) IsInterrupted() bool {
	return h.task.IsInterrupted()
}

// Weight reports the weight class the referenced Task was submitted under.
func (h TaskHandle) Weight() Weight {
	return h.task.Weight()
}

// Weak downgrades this handle to a WeakTaskHandle, which tolerates the Task
// having already finished and been dropped from the Service's table.
func (h TaskHandle) Weak() WeakTaskHandle {
	return WeakTaskHandle{id: h.task.id, service: h.task.service}
}

// WeakTaskHandle is a non-owning reference to a Task, identified by id
// rather than pointer. Unlike TaskHandle it is safe to hold past the Task's
// lifetime: once the Task has finalized and been removed from its Service,
// every method on a WeakTaskHandle becomes a no-op rather than touching
// freed state.
type WeakTaskHandle struct {
	id      uint64
	service *Service
}

// Interrupt marks the referenced Task for cancellation if it is still
// live; it is silently a no-op if the Task has already finished.
func (w WeakTaskHandle) Interrupt() {
	if t := w.service.lookupTask(w.id); t != nil {
		t.Interrupt()
	}
}

// IsInterrupted reports the referenced Task's interrupted state, or false
// if it has already finished and is no longer tracked.
func (w WeakTaskHandle) IsInterrupted() bool {
	if t := w.service.lookupTask(w.id); t != nil {
		return t.IsInterrupted()
	}
	return false
}

// Alive reports whether the referenced Task is still tracked by its
// Service - i.e. has not yet finalized.
func (w WeakTaskHandle) Alive() bool {
	return w.service.lookupTask(w.id) != nil
}
