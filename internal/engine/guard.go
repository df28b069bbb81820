package engine

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// Guard serializes access to the engine's shared state. Distinct
// goroutines queue: adapter callbacks (inbound data, responses) are
// drained one at a time, preserving the single active mutator the
// engine's concurrency model requires. Re-acquisition from the
// goroutine that already holds the guard panics instead of
// deadlocking — an engine callback has looped back into the engine
// synchronously, which is a programming error to surface loudly rather
// than a contention case to wait out.
type Guard struct {
	mu    sync.Mutex
	owner atomic.Int64
}

func NewGuard() *Guard { return &Guard{} }

// Acquire takes the guard and returns a function that releases it.
// Blocks if another goroutine holds it; panics if this goroutine does.
func (g *Guard) Acquire() func() {
	id := goroutineID()
	if g.owner.Load() == id {
		panic("engine: guard acquired while already held (nested borrow)")
	}
	g.mu.Lock()
	g.owner.Store(id)
	return g.release
}

func (g *Guard) release() {
	g.owner.Store(0)
	g.mu.Unlock()
}

// goroutineID extracts the current goroutine's id from its stack
// header ("goroutine 18 [running]:"). There is no supported API for
// this; it is used only to detect reentrancy, never for scheduling.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return -1
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
