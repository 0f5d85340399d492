// ============================================================================
// treetask - Hierarchical Task Scheduler
// ============================================================================
//
// Package: treetask (root)
// Purpose: In-process parallel task tree scheduler with weight-fair dispatch,
//          cooperative interrupt cascades and a shared/exclusive mutex
//          primitive built on top of the same task engine.
//
// Design Pattern:
//   Clients submit closures as Tasks, optionally parented to another Task.
//   A fixed Service worker pool dispatches Tasks from three per-weight
//   ready queues (Light/Middle/Heavy), keeping each weight class close to
//   its allotted share of workers under overload. A parent Task only
//   reaches its Done state after every descendant has finished; interrupting
//   a Task cascades the interrupt flag down to any child still waiting to
//   run.
//
// Architecture Components:
//   ┌──────────┐   Start()    ┌──────────────┐
//   │  Client  │ -----------> │    Service   │
//   └──────────┘              │  ready queues│
//                              │  Light/Mid/  │
//                              │  Heavy       │
//                              └──────┬───────┘
//                                     │ dispatch
//                              ┌──────▼───────┐
//                              │   Worker(s)  │
//                              └──────┬───────┘
//                                     │ exec()
//                              ┌──────▼───────┐
//                              │     Task     │ --(children)--> more Tasks
//                              └──────────────┘
//
// Lifecycle:
//   1. NewService(numThreads) - spin up numThreads*3 workers
//   2. service.Task/TopmostTask/ChildTask(weight, fn).Succeeded(...).Start()
//   3. service.WaitUntilEverythingIsDone() - idle barrier
//   4. service.Shutdown() - stop workers, drain unstarted tasks
//
// Concurrency Control:
//   - One mutex per Service (queues, counters, condition variables).
//   - One mutex per Task (state, child buffers).
//   - One mutex per Mutex primitive (admission queue).
//   - Locking order is always Service-or-Mutex before Task; a Task's own
//     lock is always released before calling back into the Service.
//
// Out of scope (see spec Non-goals): distributed execution, persistent or
// resumable tasks, work-stealing across services, preemptive cancellation,
// priorities beyond the fixed three-level weight ladder, dynamic worker
// pool resizing.
//
// ============================================================================

// Package treetask implements a hierarchical, weight-fair task scheduler
// for in-process parallelism, plus a shared/exclusive Mutex built atop it.
package treetask
