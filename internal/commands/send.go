package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/oscbridge/internal/oscnet"
	"evalgo.org/oscbridge/internal/router"
)

func newSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <address> [value...]",
		Short: "Send one OSC message",
		Long: fmt.Sprintf(`Send one OSC message with string arguments to a running bridge.

Known commands: %v`, router.DefaultCommands().Names()),
		Example: `  oscbridge send /play
  oscbridge send /2/seek 30
  oscbridge send --port 9000 /volume 256`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSend,
	}

	cmd.Flags().String("host", "127.0.0.1", "host of the OSC server")
	cmd.Flags().Int("port", 5005, "port the OSC server is listening on")

	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return err
	}
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}

	return oscnet.Send(host, port, args[0], args[1:]...)
}
