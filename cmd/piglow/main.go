// Command piglow drives a PiGlow board with a demo pattern until
// interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"libpi.so/piglow"
)

var (
	configPath = ""
	verbose    = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "configuration file (optional)")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := readConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	c, err := piglow.Start(piglow.Options{
		Bus:    cfg.Bus,
		Name:   cfg.Name,
		Logger: slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to start controller: %w", err)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		// The controller terminating on its own (a bus write failure)
		// takes the pattern loop down with it.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.Done():
			if err := c.Err(); err != nil {
				return fmt.Errorf("controller died: %w", err)
			}
			return nil
		}
	})
	errg.Go(func() error {
		return runPattern(ctx, c, cfg)
	})

	err = errg.Wait()

	if stopErr := c.Stop(time.Duration(cfg.StopTimeout)); stopErr != nil {
		slog.Warn("shutdown incomplete", "error", stopErr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func readConfig() (*Config, error) {
	if configPath == "" {
		cfg := DefaultConfig
		return &cfg, nil
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return ParseConfig(f)
}

// runPattern animates the board until the context is canceled.
func runPattern(ctx context.Context, c *piglow.Controller, cfg *Config) error {
	ticker := time.NewTicker(time.Second / time.Duration(cfg.Rate))
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		t := time.Since(start).Seconds()
		err := c.MapPower(func(led piglow.LED) (byte, error) {
			return frame(cfg.Pattern, led, t)
		})
		if err != nil {
			return fmt.Errorf("pattern frame: %w", err)
		}
	}
}

// frame computes one LED's gamma-corrected power for the pattern at time t.
func frame(pattern string, led piglow.LED, t float64) (byte, error) {
	var phase float64
	switch pattern {
	case "pulse":
		// All rings breathe together, slightly offset outwards.
		phase = t - float64(led.Ring)*0.1
	case "spiral":
		// Each arm chases the next around the spiral.
		phase = t*2 - float64(led.Arm)/3*2*math.Pi - float64(led.Ring)*0.2
	}
	return piglow.GammaFloat((math.Sin(phase) + 1) / 2)
}
