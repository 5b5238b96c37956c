// Package store implements the Store: the single owner of application state.
//
// ARCHITECTURE:
//
// Single-Writer Dispatch:
// Every action goes through one FIFO queue. Whoever sends into an idle queue
// becomes its drainer and processes actions one at a time until the queue is
// empty. This ensures:
// - No two reductions ever run at the same time
// - A single total order over every processed action
// - Re-entrant sends (from listeners or effects) never nest inside a reducer
//
// Action Processing Flow:
// 1. Send enqueues the action
// 2. The drainer copies the current state and runs the root reducer once
// 3. On success the copy is committed and listeners are notified in order
// 4. The reducer's effect is handed to the Scheduler
// 5. Actions produced by effects are sent back through step 1
//
// On reducer error nothing is committed and no listener is notified.
//
// CRITICAL PATTERNS:
//
// Snapshots:
// Listeners and State callers receive a shallow copy of the state. State
// types keep collections in copy-on-write containers (identified.Array) so a
// published snapshot is never mutated by a later reduction.
//
// Scoping:
// Scope and ForEach derive child-shaped stores for presentation code. They
// hold no state of their own and forward every send to the parent queue.
package store
