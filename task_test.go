package treetask

// ============================================================================
// Task Test File
// Purpose: Unit-level coverage of the state machine, buffer bookkeeping and
// completion protocol below the public builder API.
// ============================================================================

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// newIdleService builds a Service with no worker goroutines, for tests
// that drive Task's internal bookkeeping directly and must not race a real
// worker pulling the same tasks off the ready queue concurrently.
func newIdleService() *Service {
	return &Service{tasks: make(map[uint64]*Task)}
}

func TestTaskIsInterruptedInheritsFromAncestors(t *testing.T) {
	svc := newIdleService()

	grandparent := newTask(svc, nil, Light, func() {})
	parent := newTask(svc, grandparent, Light, func() {})
	child := newTask(svc, parent, Light, func() {})

	assert.False(t, child.IsInterrupted())

	grandparent.Interrupt()

	assert.True(t, child.IsInterrupted())
	assert.True(t, parent.IsInterrupted())
}

func TestTaskAddChildTaskTracksCount(t *testing.T) {
	svc := newIdleService()

	parent := newTask(svc, nil, Light, func() {})
	child := newTask(svc, parent, Light, func() {})

	parent.addChildTask(Light, child)

	parent.mu.Lock()
	count := parent.numChildrenToComplete
	bufLen := parent.childBuffers[Light].len()
	parent.mu.Unlock()

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, bufLen)
}

func TestTaskNotifyAndAddDeferredDoesNotDoubleCount(t *testing.T) {
	svc := newIdleService()

	parent := newTask(svc, nil, Light, func() {})
	child := newTask(svc, parent, Light, func() {})

	parent.notifyDeferredTask()
	parent.addDeferredTask(Light, child)

	parent.mu.Lock()
	count := parent.numChildrenToComplete
	parent.mu.Unlock()

	assert.Equal(t, 1, count)
}

func TestCallbackSetFiresInAttachmentOrder(t *testing.T) {
	var cs callbackSet
	var order []int

	cs.add(callbackFinished, func() { order = append(order, 1) })
	cs.add(callbackFinished, func() { order = append(order, 2) })
	cs.fire(callbackFinished)

	assert.Equal(t, []int{1, 2}, order)
	assert.True(t, cs.has(callbackFinished))
	assert.False(t, cs.has(callbackSucceeded))
}

func TestFifoOrderingAndPushFront(t *testing.T) {
	var q fifo[int]

	q.pushBack(1)
	q.pushBack(2)
	q.pushFront(0)

	v, ok := q.popFront()
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	v, ok = q.popFront()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Equal(t, 1, q.len())
	assert.False(t, q.empty())
}
