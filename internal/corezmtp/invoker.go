package corezmtp

import "sync"

// Invoker spawns and tracks goroutines so callers can wait for every
// spawned goroutine to finish before returning from Stop. Sockets and
// tests alike use the WaitGroup-backed implementation from NewInvoker,
// which lets tests assert clean shutdown with goleak.
type Invoker interface {
	Spawn(f func())
	Stop()
}

type waitGroupInvoker struct {
	wg sync.WaitGroup
}

func (w *waitGroupInvoker) Spawn(f func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		f()
	}()
}

func (w *waitGroupInvoker) Stop() {
	w.wg.Wait()
}

// NewInvoker returns a WaitGroup-backed Invoker. Each socket owns one so
// Close() can wait for its per-peer pumps to fully exit.
func NewInvoker() Invoker {
	return &waitGroupInvoker{}
}
