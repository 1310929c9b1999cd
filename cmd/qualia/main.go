package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liliang-cn/qualia/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qualia",
	Short: "Qualia AI search assistant",
	Long: `Qualia answers questions through a hosted search-capable language model,
shows a simulated thinking sequence while it works and keeps the chat history
in an optional backing store.`,
	SilenceUsage: true,
}

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug,info,warn,error) (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration and builds the logger it describes
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := newLogger(cfg.Log, logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newLogger(cfg config.LogConfig, override string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}

	name := cfg.Level
	if override != "" {
		name = override
	}
	if name != "" {
		level, err := zap.ParseAtomicLevel(name)
		if err != nil {
			return nil, fmt.Errorf("cannot parse log level %q: %w", name, err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
