package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/atikulmunna/deskwatch/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "deskwatch",
	Short: "deskwatch: live role board for a coding assistant's logs",
	Long: `deskwatch tails the debug and session logs a coding assistant writes
under ~/.claude, classifies every new line into one of eight role desks,
and streams batched updates to your terminal or to dashboard clients.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.deskwatch.yaml)")
	flags.String("root", "", "directory to watch (default: $HOME/.claude)")
	flags.StringP("output", "o", "text", "output format: text, json")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Duration("debounce", 0, "window for coalescing file events (default 200ms)")

	cobra.CheckErr(viper.BindPFlag(config.KeyRoot, flags.Lookup("root")))
	cobra.CheckErr(viper.BindPFlag(config.KeyOutput, flags.Lookup("output")))
	cobra.CheckErr(viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".deskwatch")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	// Only an explicitly set --debounce overrides file and env values.
	if f := rootCmd.PersistentFlags().Lookup("debounce"); f != nil && f.Changed {
		viper.Set(config.KeyDebounce, f.Value.String())
	}
}

// loadConfig resolves the configuration and installs the default logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
