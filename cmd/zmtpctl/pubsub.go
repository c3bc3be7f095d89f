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

// newPubSubCmd runs a small PUB/SUB fan-out demo: one publisher, two
// subscribers with different prefixes, demonstrating subscription gating.
func newPubSubCmd() *cobra.Command {
	var endpoint string

	cmd := &cobra.Command{
		Use:   "pubsub",
		Short: "Run a PUB/SUB fan-out demo with prefix-filtered subscribers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPubSub(cmd.Context(), endpoint)
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "tcp://127.0.0.1:0", "endpoint to bind PUB on")
	return cmd
}

func runPubSub(ctx context.Context, endpoint string) error {
	cfg := zmtp.Config{Logger: logging.NewDefault()}

	pub, err := socket.NewPUB(cfg)
	if err != nil {
		return fmt.Errorf("zmtpctl: new pub: %w", err)
	}
	defer pub.Close()

	bound, err := pub.Bind(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("zmtpctl: bind pub: %w", err)
	}
	fmt.Printf("bound pub socket to %s\n", bound)

	weather, err := socket.NewSUB(cfg)
	if err != nil {
		return fmt.Errorf("zmtpctl: new sub weather: %w", err)
	}
	defer weather.Close()
	if err := weather.Connect(ctx, bound); err != nil {
		return fmt.Errorf("zmtpctl: connect sub weather: %w", err)
	}
	weather.Subscribe([]byte("weather."))

	sports, err := socket.NewSUB(cfg)
	if err != nil {
		return fmt.Errorf("zmtpctl: new sub sports: %w", err)
	}
	defer sports.Close()
	if err := sports.Connect(ctx, bound); err != nil {
		return fmt.Errorf("zmtpctl: connect sub sports: %w", err)
	}
	sports.Subscribe([]byte("sports."))

	time.Sleep(100 * time.Millisecond) // let subscriptions land before publishing

	topics := []string{"weather.rain", "sports.score", "weather.sun"}
	for _, topic := range topics {
		if err := pub.Send(ctx, zmtp.NewMessage([]byte(topic))); err != nil {
			return fmt.Errorf("pub send %q: %w", topic, err)
		}
	}

	recvCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		msg, err := weather.Recv(recvCtx)
		if err != nil {
			return fmt.Errorf("weather sub recv %d: %w", i, err)
		}
		fmt.Printf("weather subscriber got: %s\n", msg)
	}

	msg, err := sports.Recv(recvCtx)
	if err != nil {
		return fmt.Errorf("sports sub recv: %w", err)
	}
	fmt.Printf("sports subscriber got: %s\n", msg)
	return nil
}
