package socket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jabolina/go-zmtp/zmtp"
)

func TestPushPullFanOutIsRoundRobinFair(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	push, err := NewPUSH(testConfig())
	if err != nil {
		t.Fatalf("NewPUSH: %v", err)
	}
	defer push.Close()

	const workers = 3
	pulls := make([]*PULL, workers)
	for i := range pulls {
		p, err := NewPULL(testConfig())
		if err != nil {
			t.Fatalf("NewPULL %d: %v", i, err)
		}
		defer p.Close()
		bound, err := p.Bind(ctx, "tcp://127.0.0.1:0")
		if err != nil {
			t.Fatalf("Bind %d: %v", i, err)
		}
		if err := push.Connect(ctx, bound); err != nil {
			t.Fatalf("Connect %d: %v", i, err)
		}
		pulls[i] = p
	}
	time.Sleep(100 * time.Millisecond)

	const total = workers * 4
	for i := 0; i < total; i++ {
		if err := push.Send(ctx, zmtp.NewMessage([]byte(fmt.Sprintf("job-%d", i)))); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	got := make([]int, workers)
	for i := 0; i < total; i++ {
		for idx, p := range pulls {
			recvCtx, recvCancel := context.WithTimeout(ctx, 50*time.Millisecond)
			_, err := p.Recv(recvCtx)
			recvCancel()
			if err == nil {
				got[idx]++
				break
			}
		}
	}

	sum := 0
	for i, c := range got {
		if c == 0 {
			t.Errorf("worker %d received nothing", i)
		}
		sum += c
	}
	if sum != total {
		t.Fatalf("received %d of %d jobs total across workers %v", sum, total, got)
	}
}
