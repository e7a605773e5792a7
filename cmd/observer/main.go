// go-pn532
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn532.
//
// go-pn532 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn532 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn532; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/actor"
	"github.com/ZaparooProject/go-scoreboard/internal/config"
	"github.com/ZaparooProject/go-scoreboard/internal/httpapi"
	"github.com/ZaparooProject/go-scoreboard/internal/metrics"
	"github.com/ZaparooProject/go-scoreboard/observer"
	"github.com/ZaparooProject/go-scoreboard/render"
	"github.com/ZaparooProject/go-scoreboard/transport/ble"
	"github.com/ZaparooProject/go-scoreboard/transport/mqtt"
	"github.com/ZaparooProject/go-scoreboard/transport/spi"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type deps struct {
	openScanner func(ctx context.Context, cfg *config.Config) (scoreboard.Scanner, func(), error)
	openDisplay func(cfg *config.Config, out io.Writer) (scoreboard.Display, error)
}

func hardwareDeps() deps {
	return deps{openScanner: openScanner, openDisplay: openDisplay}
}

type cliFlags struct {
	configPath  string
	display     string
	debug       bool
	printConfig bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("observer", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Config file (default ./scoreboard.yaml if present)")
	fs.StringVar(&f.display, "display", "", "Display type, overrides display.type (spi or console)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fs.BoolVar(&f.printConfig, "print-config", false, "Print the default configuration and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func loadConfig(f *cliFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.display != "" {
		cfg.Display.Type = f.display
	}
	if f.debug {
		cfg.Log.Debug = true
	}
	return cfg, cfg.Validate()
}

func setupLogging(cfg *config.Config, out io.Writer) {
	level := zerolog.InfoLevel
	if cfg.Log.Debug {
		level = zerolog.DebugLevel
		scoreboard.SetDebugEnabled(true)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Str("node", "observer").Logger()
}

func openScanner(ctx context.Context, cfg *config.Config) (scoreboard.Scanner, func(), error) {
	switch cfg.Radio.Type {
	case "mqtt":
		c, err := scoreboard.Retry(ctx, scoreboard.BootRetryConfig(), func() (*mqtt.Client, error) {
			return mqtt.Dial(ctx, cfg.Radio.Broker)
		})
		if err != nil {
			return nil, nil, err
		}
		return mqtt.NewScanner(c), func() { _ = c.Close() }, nil
	default:
		return ble.NewScanner(ble.NewRadio()), func() {}, nil
	}
}

func openDisplay(cfg *config.Config, out io.Writer) (scoreboard.Display, error) {
	layout := render.DefaultLayout()
	if cfg.Display.Type == "console" {
		return render.NewConsoleDisplay(out, layout), nil
	}
	d, err := spi.New(cfg.Display.Port, &spi.Config{
		Pixels:     layout.Length,
		Brightness: uint8(cfg.Display.Brightness),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open LED strip on %s: %w", cfg.Display.Port, err)
	}
	return d, nil
}

func run(ctx context.Context, cfg *config.Config, d deps, out io.Writer) error {
	display, err := d.openDisplay(cfg, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := display.Close(); err != nil {
			log.Warn().Err(err).Msg("close display")
		}
	}()

	scanner, closeScanner, err := d.openScanner(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeScanner()

	reg := metrics.NewRegistry()
	o, err := observer.New(scanner, display,
		&observer.Config{NamePrefix: cfg.Radio.Name, RenderOnStart: true},
		observer.WithRecorder(metrics.NewRecorder(reg)))
	if err != nil {
		return err
	}
	metrics.RegisterState(reg, o.State)

	node := actor.New(o)
	if err := node.Start(ctx); err != nil {
		return err
	}
	log.Info().Str("radio", cfg.Radio.Type).Str("display", cfg.Display.Type).Msg("observer started")

	var srv *httpapi.Server
	if cfg.HTTP.Enable {
		opts := httpapi.Options{State: o, Ready: node.Running}
		if cfg.HTTP.Metrics {
			opts.Metrics = metrics.Handler(reg)
		}
		srv = httpapi.New(&httpapi.Config{
			Addr:         cfg.HTTP.Addr,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}, opts)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("http server")
			}
		}()
	}

	select {
	case <-ctx.Done():
	case <-node.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if srv != nil {
		_ = srv.Shutdown(stopCtx)
	}
	err = node.Stop(stopCtx)

	m := o.GetMetrics()
	log.Info().
		Int64("discoveries", m.Discoveries).
		Int64("renders", m.Renders).
		Int64("suppressed", m.Suppressed).
		Stringer("state", o.State()).
		Msg("observer stopped")
	return err
}

func main() {
	os.Exit(mainWithExitCode(os.Args[1:]))
}

func mainWithExitCode(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		return 2
	}
	if flags.printConfig {
		if err := config.WriteExample(os.Stdout); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	setupLogging(cfg, os.Stderr)

	if cfg.Log.Dir != "" {
		if path, err := scoreboard.InitSessionLog(cfg.Log.Dir, "observer"); err != nil {
			log.Warn().Err(err).Msg("session log disabled")
		} else {
			log.Info().Str("path", path).Msg("session log")
			defer func() { _ = scoreboard.CloseSessionLog() }()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, hardwareDeps(), os.Stdout); err != nil {
		log.Error().Err(err).Msg("observer failed")
		return 1
	}
	return 0
}
