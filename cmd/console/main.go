package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"prediction-form/internal/config"
	"prediction-form/internal/console"
	"prediction-form/internal/logging"
	"prediction-form/internal/predict"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	endpoint   string
	timeout    time.Duration
	logFile    string
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "predict-console",
		Short:         "Fill in and submit the prediction form from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.endpoint, "endpoint", "", "Prediction endpoint URL (overrides config and PREDICT_ENDPOINT)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Request timeout (overrides config and PREDICT_TIMEOUT)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file; logs are discarded otherwise")
	return cmd
}

func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, fmt.Errorf("environment overrides: %w", err)
	}
	if cmd.Flags().Changed("endpoint") {
		cfg.Endpoint = opts.endpoint
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = opts.logFile
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config) error {
	logFile, err := logging.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logFile.Close()
	// stderr output would corrupt the alternate screen.
	if cfg.Log.File == "" {
		logrus.SetOutput(io.Discard)
	}

	client, err := predict.NewClient(predict.Config{Endpoint: cfg.Endpoint, Timeout: cfg.Timeout})
	if err != nil {
		return fmt.Errorf("prediction client: %w", err)
	}
	model, err := console.New(client, cfg.Sample, cfg.Labels)
	if err != nil {
		return err
	}

	logrus.WithField("endpoint", client.Endpoint()).Info("console started")
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
