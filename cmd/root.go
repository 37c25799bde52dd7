package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/robotsim/app"
	"github.com/kilianp07/robotsim/config"
	coremon "github.com/kilianp07/robotsim/core/monitoring"
	"github.com/kilianp07/robotsim/infra/logger"
	"github.com/kilianp07/robotsim/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "robotsim",
	Short: "Differential-drive robot fleet emulator over MQTT",
	Long: `robotsim simulates a fleet of differential-drive robots in a square arena.
Each robot listens on robots/{id}/command and publishes its pose on
robots/{id}/position once per tick.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringP("mqtt", "m", "", "MQTT broker address, e.g. mqtt://localhost:1883")
	rootCmd.Flags().IntP("robots", "r", 0, "number of robots")
	rootCmd.Flags().Float64P("world-size", "w", 0, "arena side length in meters")
	rootCmd.Flags().String("boundary", "", "wall policy: bounce or none")
	rootCmd.Flags().String("log-level", "", "log level: debug, info, warn or error")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configuration file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("mqtt") {
		v, err := flags.GetString("mqtt")
		if err != nil {
			return err
		}
		cfg.MQTT.Broker = v
	}
	if flags.Changed("robots") {
		v, err := flags.GetInt("robots")
		if err != nil {
			return err
		}
		cfg.Simulation.Robots = v
	}
	if flags.Changed("world-size") {
		v, err := flags.GetFloat64("world-size")
		if err != nil {
			return err
		}
		cfg.Simulation.WorldSize = v
	}
	if flags.Changed("boundary") {
		v, err := flags.GetString("boundary")
		if err != nil {
			return err
		}
		cfg.Simulation.Boundary = v
	}
	if flags.Changed("log-level") {
		v, err := flags.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.Logging.Level = v
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	closeLogs, err := logger.Setup(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer func() { _ = closeLogs() }()
	log := logger.New("main")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		log.Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
		defer coremon.Flush(2 * time.Second)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
