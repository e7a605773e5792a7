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
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/broadcaster"
	"github.com/ZaparooProject/go-scoreboard/internal/actor"
	"github.com/ZaparooProject/go-scoreboard/internal/config"
	"github.com/ZaparooProject/go-scoreboard/internal/httpapi"
	"github.com/ZaparooProject/go-scoreboard/internal/metrics"
	"github.com/ZaparooProject/go-scoreboard/transport/uart"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// deps opens the hardware. Tests replace it with mocks.
type deps struct {
	openLink       func(ctx context.Context, cfg *config.Config) (scoreboard.Link, error)
	openAdvertiser func(ctx context.Context, cfg *config.Config) (scoreboard.Advertiser, func(), error)
	openIndicators func(ctx context.Context, cfg *config.Config) (scoreboard.Indicators, func(), error)
}

func hardwareDeps() deps {
	return deps{
		openLink:       openLink,
		openAdvertiser: openAdvertiser,
		openIndicators: openIndicators,
	}
}

func setupLogging(cfg *config.Config, out io.Writer) {
	level := zerolog.InfoLevel
	if cfg.Log.Debug {
		level = zerolog.DebugLevel
		scoreboard.SetDebugEnabled(true)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Str("node", "broadcaster").Logger()
}

func broadcasterConfig(cfg *config.Config) *broadcaster.Config {
	return &broadcaster.Config{
		Name:                cfg.Radio.Name,
		AdvertisingInterval: cfg.Radio.Interval,
		StrictChecksum:      cfg.StrictChecksum,
	}
}

func httpConfig(cfg *config.Config) *httpapi.Config {
	return &httpapi.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		CommandRate:  cfg.HTTP.CommandRate,
		CommandBurst: cfg.HTTP.CommandBurst,
	}
}

func run(ctx context.Context, cfg *config.Config, d deps) error {
	link, err := d.openLink(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := link.Close(); err != nil {
			log.Warn().Err(err).Msg("close link")
		}
	}()

	adv, closeAdv, err := d.openAdvertiser(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAdv()

	ind, closeInd, err := d.openIndicators(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeInd()

	reg := metrics.NewRegistry()
	b := broadcaster.New(link, adv, broadcasterConfig(cfg),
		broadcaster.WithIndicators(ind),
		broadcaster.WithRecorder(metrics.NewRecorder(reg)))
	metrics.RegisterState(reg, b.State)

	node := actor.New(b)
	if err := node.Start(ctx); err != nil {
		return err
	}
	log.Info().Str("link", string(link.Type())).Str("radio", cfg.Radio.Type).Msg("broadcaster started")

	var srv *httpapi.Server
	if cfg.HTTP.Enable {
		opts := httpapi.Options{State: b, Commands: b, Ready: node.Running}
		if cfg.HTTP.Metrics {
			opts.Metrics = metrics.Handler(reg)
		}
		srv = httpapi.New(httpConfig(cfg), opts)
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

	m := b.GetMetrics()
	log.Info().
		Int64("events", m.EventsReceived).
		Int64("applied", m.CommandsApplied).
		Int64("dropped", m.FramesDropped).
		Stringer("state", b.State()).
		Msg("broadcaster stopped")
	return err
}

func listPorts(w io.Writer) error {
	ports, err := uart.ListPorts()
	if err != nil {
		return err
	}
	for _, p := range ports {
		if p.IsUSB {
			_, _ = fmt.Fprintf(w, "%s\t%s:%s\t%s\n", p.Name, p.VID, p.PID, p.Product)
		} else {
			_, _ = fmt.Fprintln(w, p.Name)
		}
	}
	return nil
}

func main() {
	os.Exit(mainWithExitCode(os.Args[1:]))
}

func mainWithExitCode(args []string) int {
	flags, err := parseFlags(args)
	if err != nil {
		return 2
	}

	if flags.listPorts {
		if err := listPorts(os.Stdout); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
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
		path, err := scoreboard.InitSessionLog(cfg.Log.Dir, "broadcaster")
		if err != nil {
			log.Warn().Err(err).Msg("session log disabled")
		} else {
			log.Info().Str("path", path).Msg("session log")
			defer func() { _ = scoreboard.CloseSessionLog() }()
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, hardwareDeps()); err != nil {
		log.Error().Err(err).Msg("broadcaster failed")
		if h := scoreboard.History(err); h != nil {
			scoreboard.Debugln(h.Dump())
		}
		return 1
	}
	return 0
}
