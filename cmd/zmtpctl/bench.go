package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jabolina/go-zmtp/logging"
	"github.com/jabolina/go-zmtp/socket"
	"github.com/jabolina/go-zmtp/zmtp"
)

// newBenchCmd runs the REQ/REP ping pattern the original req_rep.rs
// criterion benchmark exercised, reporting wall-clock instead of a
// statistical distribution.
func newBenchCmd() *cobra.Command {
	var endpoint string
	var n int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run an N-iteration REQ/REP ping and report elapsed time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context(), endpoint, n)
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "tcp://127.0.0.1:0", "endpoint to bind REP on and connect REQ to")
	cmd.Flags().IntVar(&n, "n", 512, "number of request/reply round trips")
	return cmd
}

func runBench(ctx context.Context, endpoint string, n int) error {
	cfg := zmtp.Config{Logger: logging.NewDefault()}

	rep, err := socket.NewREP(cfg)
	if err != nil {
		return fmt.Errorf("zmtpctl: new rep: %w", err)
	}
	defer rep.Close()

	bound, err := rep.Bind(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("zmtpctl: bind rep: %w", err)
	}
	fmt.Printf("bound rep socket to %s\n", bound)

	req, err := socket.NewREQ(cfg)
	if err != nil {
		return fmt.Errorf("zmtpctl: new req: %w", err)
	}
	defer req.Close()

	if err := req.Connect(ctx, bound); err != nil {
		return fmt.Errorf("zmtpctl: connect req: %w", err)
	}
	time.Sleep(100 * time.Millisecond) // let the handshake land before the first Send

	done := make(chan error, 1)
	go func() {
		for i := 0; i < n; i++ {
			msg, err := rep.Recv(ctx)
			if err != nil {
				done <- fmt.Errorf("rep recv %d: %w", i, err)
				return
			}
			reply := fmt.Sprintf("%s Rep - %d", msg.String(), i)
			if err := rep.Send(ctx, zmtp.NewMessage([]byte(reply))); err != nil {
				done <- fmt.Errorf("rep send %d: %w", i, err)
				return
			}
		}
		done <- nil
	}()

	start := time.Now()
	for i := 0; i < n; i++ {
		if err := req.Send(ctx, zmtp.NewMessage([]byte(fmt.Sprintf("Req - %d", i)))); err != nil {
			return fmt.Errorf("req send %d: %w", i, err)
		}
		reply, err := req.Recv(ctx)
		if err != nil {
			return fmt.Errorf("req recv %d: %w", i, err)
		}
		want := fmt.Sprintf("Req - %d Rep - %d", i, i)
		if reply.String() != want {
			return fmt.Errorf("iteration %d: got %q want %q", i, reply.String(), want)
		}
	}
	elapsed := time.Since(start)

	if err := <-done; err != nil {
		return err
	}
	fmt.Printf("%d round trips in %s (%s/op)\n", n, elapsed, elapsed/time.Duration(n))
	return nil
}
