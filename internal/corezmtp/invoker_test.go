package corezmtp

import (
	"sync/atomic"
	"testing"
)

func TestInvokerStopWaitsForSpawned(t *testing.T) {
	inv := NewInvoker()
	var n int32
	for i := 0; i < 10; i++ {
		inv.Spawn(func() {
			atomic.AddInt32(&n, 1)
		})
	}
	inv.Stop()
	if got := atomic.LoadInt32(&n); got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestInvokerSpawnFromWithinSpawnedGoroutine(t *testing.T) {
	inv := NewInvoker()
	var n int32
	inv.Spawn(func() {
		inv.Spawn(func() {
			atomic.AddInt32(&n, 1)
		})
	})
	inv.Stop()
	if got := atomic.LoadInt32(&n); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}
