// Command sidirokctl is the operator CLI: schema migrations, knowledge base
// seeding, one-off diagnoses and MCP client registration.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidirok-cf-server/internal/config"
	"github.com/sidirok-cf-server/internal/domain"
	"github.com/sidirok-cf-server/internal/logging"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// cliContext carries what every subcommand needs after flag parsing.
type cliContext struct {
	configFile string
	verbose    bool
}

func (c *cliContext) loadConfig() (*domain.Config, error) {
	manager, err := config.NewManagerFromFile(c.configFile)
	if err != nil {
		return nil, err
	}
	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return manager.GetConfig(), nil
}

func (c *cliContext) logger(cfg *domain.Config) *logrus.Logger {
	logCfg := domain.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"}
	if cfg != nil {
		logCfg.Format = cfg.Logging.Format
	}
	if c.verbose {
		logCfg.Level = "debug"
	}
	return logging.NewLogger(logCfg)
}

func newRootCmd() *cobra.Command {
	cli := &cliContext{}

	root := &cobra.Command{
		Use:           "sidirokctl",
		Short:         "Operate the sidirok smoking-disease diagnosis service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cli.configFile, "config", "c", "", "config file (default: ./config.yaml, ./config/, /etc/sidirok/)")
	root.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newMigrateCmd(cli))
	root.AddCommand(newSeedCmd(cli))
	root.AddCommand(newDiagnoseCmd(cli))
	root.AddCommand(newSetupCmd())

	return root
}
