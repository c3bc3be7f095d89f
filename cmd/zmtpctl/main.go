// Command zmtpctl is a small harness for exercising the socket package
// end to end: a REQ/REP ping benchmark and a PUB/SUB fan-out demo, both
// grounded on the original req_rep.rs bench and socket_client.rs example.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "zmtpctl",
		Short: "Exercise go-zmtp sockets from the command line",
	}
	root.AddCommand(newBenchCmd())
	root.AddCommand(newPubSubCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
