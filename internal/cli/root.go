package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FranksOps/scout/internal/config"
)

// app carries state shared by subcommands once the root has run.
type app struct {
	v          *viper.Viper
	configFile string
	envFile    string
	logLevel   string
	logger     *slog.Logger
}

// NewRootCmd builds the scout command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "scout",
		Short:         "Keyword search over Google with page title and description enrichment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(a.envFile); err != nil {
				return err
			}
			level, err := parseLevel(a.logLevel)
			if err != nil {
				return err
			}
			a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default: scout.yaml or secrets.toml in . and ./.streamlit)")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newSearchCmd(a))
	return root
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
