package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/oscbridge/internal/config"
	"evalgo.org/oscbridge/internal/version"
)

// Execute runs the oscbridge command tree.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds a fresh command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oscbridge",
		Short: "Control VLC players with OSC messages",
		Long: `oscbridge listens for OSC messages over UDP and turns them into
VLC HTTP interface commands.

An address of /<command> is sent to every configured player, /<n>/<command>
to player n (numbered from 1 in --vlc order). Supported commands are
play, pause, stop, seek, volume and fullscreen.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (json, text)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)

	return rootCmd
}

// loadConfig reads the configuration with cmd's flags taking precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, info.String())

			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(out, "\nDetails:\n")
				fmt.Fprintf(out, "  Version:    %s\n", info.Version)
				fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
				fmt.Fprintf(out, "  Built:      %s\n", info.BuildTime)
				fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
				fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "verbose version output")
	return cmd
}
