package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# oscbridge configuration

osc:
  listen_addr: 127.0.0.1:5005
  shutdown_timeout: 5s
  # Messages per second accepted from the network, 0 for no limit
  rate_limit: 0
  rate_burst: 10

targets:
  # Addressed as /1/<command>, /2/<command>, ... in this order
  urls:
    - http://localhost:8080
  # One password per target, or a single one shared by all
  passwords: []
  timeout: 500ms
  max_concurrency: 0

admin:
  # host:port of the health and metrics server, empty to disable
  listen_addr: ""
  shutdown_timeout: 5s

logging:
  level: info
  format: json
  output: stderr
`

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	showConfigCmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE:  runShowConfig,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file",
		RunE:  runInitConfig,
	}
	initConfigCmd.Flags().StringP("output", "o", "config.yaml", "path of the file to create")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
	return configCmd
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
	return nil
}
