package treetask

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Mutex is a shared/exclusive admission gate built on top of Service and
// Task rather than underneath them: every Task created through a Mutex
// still goes through the ordinary weight-fair dispatch machinery once
// admitted, so lock contention never blocks a worker goroutine - a Task
// waiting for the Mutex simply sits in the Mutex's own wait queue instead
// of occupying a worker or a parent's child buffer.
//
// Admission policy: a request is admitted immediately if the Mutex is
// unlocked, or if the request is shared and every current holder is also
// shared and nothing is already waiting; otherwise it is enqueued behind
// whatever is already waiting. This lets a burst of shared requests batch
// onto an already-shared hold, but never lets a later shared request
// overtake a writer that is already queued - the reader-batching-without-
// writer-starvation property called for in the spec's Mutex design notes.
type Mutex struct {
	id      uuid.UUID
	service *Service

	mu          sync.Mutex
	cond        sync.Cond
	holders     int
	sharedMode  bool
	waitQueue   fifo[*Task]
	outstanding int
	closing     bool
}

// NewMutex creates an unlocked Mutex whose builder methods construct Tasks
// against service.
func NewMutex(service *Service) *Mutex {
	m := &Mutex{id: uuid.New(), service: service}
	m.cond.L = &m.mu
	return m
}

// ID returns the Mutex's identity, suitable for correlating log lines or
// metric labels across what may be many Mutex instances in one process.
func (m *Mutex) ID() uuid.UUID {
	return m.id
}

// RootTask builds a new topmost, exclusive Task gated by this Mutex.
func (m *Mutex) RootTask(weight Weight, fn func()) *TaskBuilder {
	return m.build(nil, weight, false, fn)
}

// Task builds a new exclusive Task gated by this Mutex, parented to the
// calling goroutine's current Task if it has one, or topmost otherwise -
// the same "submit relative to whatever's running" convenience the
// original API offers alongside its explicit-parent form.
func (m *Mutex) Task(weight Weight, fn func()) *TaskBuilder {
	parent, _ := m.service.CurrentTask()
	return m.build(parent.taskOrNil(), weight, false, fn)
}

// ChildTask builds a new exclusive Task gated by this Mutex, explicitly
// parented to parent. parent must be a non-zero TaskHandle (typically
// obtained via Service.CurrentTask from within a running closure) - the
// zero handle panics with ErrNotInWorker, matching Service.ChildTask.
func (m *Mutex) ChildTask(parent TaskHandle, weight Weight, fn func()) *TaskBuilder {
	if parent.task == nil {
		panic(fmt.Errorf("treetask: Mutex.ChildTask: %w", ErrNotInWorker))
	}
	return m.build(parent.task, weight, false, fn)
}

// SharedRootTask builds a new topmost, shared Task gated by this Mutex.
func (m *Mutex) SharedRootTask(weight Weight, fn func()) *TaskBuilder {
	return m.build(nil, weight, true, fn)
}

// SharedTask builds a new shared Task gated by this Mutex, parented to the
// calling goroutine's current Task if it has one, or topmost otherwise.
func (m *Mutex) SharedTask(weight Weight, fn func()) *TaskBuilder {
	parent, _ := m.service.CurrentTask()
	return m.build(parent.taskOrNil(), weight, true, fn)
}

// SharedChildTask builds a new shared Task gated by this Mutex, explicitly
// parented to parent. parent must be a non-zero TaskHandle - the zero
// handle panics with ErrNotInWorker, matching Service.ChildTask.
func (m *Mutex) SharedChildTask(parent TaskHandle, weight Weight, fn func()) *TaskBuilder {
	if parent.task == nil {
		panic(fmt.Errorf("treetask: Mutex.SharedChildTask: %w", ErrNotInWorker))
	}
	return m.build(parent.task, weight, true, fn)
}

func (m *Mutex) build(parent *Task, weight Weight, shared bool, fn func()) *TaskBuilder {
	m.mu.Lock()
	closing := m.closing
	m.mu.Unlock()
	if closing {
		panic(fmt.Errorf("treetask: Mutex: %w", ErrMutexDestroying))
	}

	t := newTask(m.service, parent, weight, fn)
	t.mtx = m
	t.shared = shared
	return &TaskBuilder{task: t}
}

// admit is called from Task.start for every Task created through this
// Mutex. It either dispatches the Task immediately or parks it in the
// wait queue, notifying the parent's child counter in the latter case so
// the parent cannot observe zero outstanding children while this Mutex
// still holds the Task back.
func (m *Mutex) admit(t *Task) {
	m.mu.Lock()
	m.outstanding++
	canAdmitNow := m.holders == 0 || (t.shared && m.sharedMode && m.waitQueue.empty())
	if canAdmitNow {
		m.holders++
		m.sharedMode = t.shared
	} else {
		m.waitQueue.pushBack(t)
	}
	waiters := m.waitQueue.len()
	m.mu.Unlock()
	m.service.recordMutexWaiters(waiters)

	if canAdmitNow {
		t.dispatchToQueue(false)
		return
	}
	if t.parent != nil {
		t.parent.notifyDeferredTask()
	}
}

// taskFinished releases this Task's hold (if any) and admits the next
// waiter or batch of waiters, if the Mutex just became unlocked. It is
// called exactly once per Task created through this Mutex, from either
// Task.finalize (the Task ran, or discovered itself already interrupted
// and never ran) or Task.finalizeCascadedChild (an ancestor's interrupt
// cascade swept this Task away before it was ever dispatched to a worker)
// - both already hold a grant from admit, so both must release it here.
func (m *Mutex) taskFinished() {
	m.mu.Lock()
	m.holders--
	m.outstanding--

	var toDispatch []*Task
	if m.holders == 0 {
		if front, ok := m.waitQueue.popFront(); ok {
			m.holders = 1
			m.sharedMode = front.shared
			toDispatch = append(toDispatch, front)

			if front.shared {
				for {
					next, ok := m.waitQueue.popFront()
					if !ok {
						break
					}
					if !next.shared {
						m.waitQueue.pushFront(next)
						break
					}
					m.holders++
					toDispatch = append(toDispatch, next)
				}
			}
		}
	}

	idle := m.outstanding == 0
	waiters := m.waitQueue.len()
	m.mu.Unlock()

	m.service.recordMutexWaiters(waiters)
	for _, next := range toDispatch {
		next.dispatchToQueue(true)
	}
	if idle {
		m.cond.Broadcast()
	}
}

// Wait blocks until every Task ever created through this Mutex has
// finalized - holders and waiters alike. Intended for tests and orderly
// shutdown, the same role Service.WaitUntilEverythingIsDone plays for an
// entire Task tree.
func (m *Mutex) Wait() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.outstanding > 0 {
		m.cond.Wait()
	}
}

// Close marks this Mutex as tearing down and blocks until every Task ever
// admitted through it - holders and waiters alike - has finalized, the Go
// analogue of spec.md §4.3/§5's destroyCV-gated destructor. Every builder
// method (RootTask, Task, ChildTask and their shared counterparts) called
// after Close has begun panics with ErrMutexDestroying - callers must stop
// attaching new Tasks to a Mutex before closing it, the same requirement
// the original's destructor places on its callers.
func (m *Mutex) Close() {
	m.mu.Lock()
	m.closing = true
	for m.outstanding > 0 {
		m.cond.Wait()
	}
	m.mu.Unlock()
}

// taskOrNil lets Mutex's convenience constructors pass a possibly-absent
// current Task through to build without every caller needing its own nil
// check on a zero-value TaskHandle.
func (h TaskHandle) taskOrNil() *Task {
	return h.task
}
