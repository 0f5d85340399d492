package treetask

// ============================================================================
// Mutex Test File
// Purpose: Verify the shared/exclusive admission policy - reader batching,
// writer admission, and no starvation - built atop the Task engine.
// ============================================================================

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMutexExclusiveTasksNeverOverlap(t *testing.T) {
	svc := NewService(4)
	defer svc.Shutdown()

	m := NewMutex(svc)

	var mu sync.Mutex
	var active, maxActive int
	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)

	for i := 0; i < n; i++ {
		m.RootTask(Light, func() {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}).Finished(func() {
			wg.Done()
		}).Start()
	}

	wg.Wait()
	assert.Equal(t, 1, maxActive)
}

func TestMutexSharedTasksRunConcurrently(t *testing.T) {
	svc := NewService(8)
	defer svc.Shutdown()

	m := NewMutex(svc)

	var mu sync.Mutex
	var active, maxActive int
	release := make(chan struct{})
	var wg sync.WaitGroup
	const n = 5
	wg.Add(n)

	for i := 0; i < n; i++ {
		m.SharedRootTask(Light, func() {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			<-release

			mu.Lock()
			active--
			mu.Unlock()
		}).Finished(func() {
			wg.Done()
		}).Start()
	}

	// Give every shared request a chance to be admitted into the same
	// batch before releasing them.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, n, maxActive)
}

func TestMutexWriterIsNotOvertakenByLaterReaders(t *testing.T) {
	svc := NewService(4)
	defer svc.Shutdown()

	m := NewMutex(svc)

	var mu sync.Mutex
	var order []string

	holdFirstReader := make(chan struct{})
	releaseFirstReader := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(3)

	m.SharedRootTask(Light, func() {
		close(holdFirstReader)
		<-releaseFirstReader
		mu.Lock()
		order = append(order, "reader1")
		mu.Unlock()
	}).Finished(func() { wg.Done() }).Start()

	<-holdFirstReader

	m.RootTask(Light, func() {
		mu.Lock()
		order = append(order, "writer")
		mu.Unlock()
	}).Finished(func() { wg.Done() }).Start()

	// This shared request arrives after the writer is already queued, so
	// it must not be admitted alongside reader1 ahead of the writer.
	m.SharedRootTask(Light, func() {
		mu.Lock()
		order = append(order, "reader2")
		mu.Unlock()
	}).Finished(func() { wg.Done() }).Start()

	close(releaseFirstReader)
	wg.Wait()

	assert.Equal(t, []string{"reader1", "writer", "reader2"}, order)
}

func TestMutexInterruptedWaiterStillReleasesSlot(t *testing.T) {
	svc := NewService(2)
	defer svc.Shutdown()

	m := NewMutex(svc)

	block := make(chan struct{})
	var ran int32

	holder := m.RootTask(Light, func() { <-block }).Start()
	_ = holder

	waiting := m.RootTask(Light, func() {
		atomic.AddInt32(&ran, 1)
	}).Start()
	waiting.Interrupt()

	var followUpRan int32
	var wg sync.WaitGroup
	wg.Add(1)
	m.RootTask(Light, func() {
		atomic.AddInt32(&followUpRan, 1)
	}).Finished(func() { wg.Done() }).Start()

	close(block)
	wg.Wait()

	assert.EqualValues(t, 0, ran)
	assert.EqualValues(t, 1, followUpRan)
}
