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
	"strings"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/internal/capture"
	"github.com/ZaparooProject/go-scoreboard/internal/config"
	"github.com/ZaparooProject/go-scoreboard/transport/ble"
	"github.com/ZaparooProject/go-scoreboard/transport/gpio"
	"github.com/ZaparooProject/go-scoreboard/transport/i2c"
	"github.com/ZaparooProject/go-scoreboard/transport/mqtt"
	"github.com/ZaparooProject/go-scoreboard/transport/uart"
	"github.com/rs/zerolog/log"
)

type cliFlags struct {
	configPath  string
	port        string
	record      string
	replay      string
	debug       bool
	listPorts   bool
	printConfig bool
}

func parseFlags(args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs := flag.NewFlagSet("broadcaster", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "Config file (default ./scoreboard.yaml if present)")
	fs.StringVar(&f.port, "port", "", "Voice module port, overrides link.port (auto-detect if empty)")
	fs.StringVar(&f.record, "record", "", "Write every receive event to this capture file")
	fs.StringVar(&f.replay, "replay", "", "Replay a capture file instead of opening the voice module")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug output")
	fs.BoolVar(&f.listPorts, "list-ports", false, "List serial ports and exit")
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
	if f.port != "" {
		cfg.Link.Port = f.port
	}
	if f.record != "" {
		cfg.Capture.Record = f.record
	}
	if f.replay != "" {
		cfg.Link.Type = "replay"
		cfg.Capture.Replay = f.replay
	}
	if f.debug {
		cfg.Log.Debug = true
	}
	return cfg, cfg.Validate()
}

// pickPort prefers the first USB serial adapter.
func pickPort(ports []uart.PortInfo) (string, error) {
	for _, p := range ports {
		if p.IsUSB {
			return p.Name, nil
		}
	}
	if len(ports) > 0 {
		return ports[0].Name, nil
	}
	return "", scoreboard.NewDeviceNotFoundError("detect", "uart")
}

func openDeviceLink(cfg *config.Config) (scoreboard.Link, error) {
	switch strings.ToLower(cfg.Link.Type) {
	case "uart":
		port := cfg.Link.Port
		if port == "" {
			ports, err := uart.ListPorts()
			if err != nil {
				return nil, fmt.Errorf("failed to list serial ports: %w", err)
			}
			if port, err = pickPort(ports); err != nil {
				return nil, err
			}
			log.Info().Str("port", port).Msg("voice module auto-detected")
		}
		link, err := uart.New(port, uartConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("failed to create UART link for %s: %w", port, err)
		}
		return link, nil
	case "i2c":
		link, err := i2c.New(cfg.Link.Port, &i2c.Config{
			PollInterval: cfg.Link.PollInterval,
			MaxFailures:  i2c.DefaultConfig().MaxFailures,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C link for %s: %w", cfg.Link.Port, err)
		}
		if cfg.Link.Volume > 0 {
			if err := link.SetVolume(byte(cfg.Link.Volume)); err != nil {
				log.Warn().Err(err).Msg("set voice module volume")
			}
		}
		if cfg.Link.WakeTime > 0 {
			if err := link.SetWakeTime(byte(cfg.Link.WakeTime)); err != nil {
				log.Warn().Err(err).Msg("set voice module wake time")
			}
		}
		return link, nil
	default:
		return nil, fmt.Errorf("%w: link type %s", scoreboard.ErrInvalidParameter, cfg.Link.Type)
	}
}

func openLink(ctx context.Context, cfg *config.Config) (scoreboard.Link, error) {
	if cfg.Link.Type == "replay" {
		r, err := capture.Open(cfg.Capture.Replay)
		if err != nil {
			return nil, err
		}
		log.Info().Str("file", cfg.Capture.Replay).Str("recorded_from", r.Header.Link).Msg("replaying capture")
		return capture.NewReplayLink(r, capture.ReplayConfig{Speed: cfg.Capture.Speed}), nil
	}

	link, err := scoreboard.Retry(ctx, scoreboard.BootRetryConfig(), func() (scoreboard.Link, error) {
		return openDeviceLink(cfg)
	})
	if err != nil {
		return nil, err
	}

	if cfg.Capture.Record != "" {
		w, err := capture.Create(cfg.Capture.Record, link.Type())
		if err != nil {
			_ = link.Close()
			return nil, err
		}
		link = capture.NewRecordingLink(link, w)
	}
	return scoreboard.NewLinkWithRetry(link, nil), nil
}

func openAdvertiser(ctx context.Context, cfg *config.Config) (scoreboard.Advertiser, func(), error) {
	switch cfg.Radio.Type {
	case "mqtt":
		c, err := scoreboard.Retry(ctx, scoreboard.BootRetryConfig(), func() (*mqtt.Client, error) {
			return mqtt.Dial(ctx, cfg.Radio.Broker)
		})
		if err != nil {
			return nil, nil, err
		}
		return mqtt.NewAdvertiser(c), func() { _ = c.Close() }, nil
	default:
		return ble.NewAdvertiser(ble.NewRadio()), func() {}, nil
	}
}

func openIndicators(ctx context.Context, cfg *config.Config) (scoreboard.Indicators, func(), error) {
	switch cfg.Indicators.Type {
	case "gpio":
		ind, err := gpio.New(&gpio.Config{
			Heartbeat:   cfg.Indicators.Heartbeat,
			Run:         cfg.Indicators.Run,
			Busy:        cfg.Indicators.Busy,
			RunInterval: gpio.DefaultConfig().RunInterval,
		})
		if err != nil {
			return nil, nil, err
		}
		blinkCtx, stop := context.WithCancel(ctx)
		go ind.Blink(blinkCtx)
		return ind, func() {
			stop()
			_ = ind.Close()
		}, nil
	case "none":
		return scoreboard.NopIndicators{}, func() {}, nil
	default:
		return &scoreboard.LogIndicators{}, func() {}, nil
	}
}

func uartConfig(cfg *config.Config) *uart.Config {
	return &uart.Config{
		BaudRate:    cfg.Link.Baud,
		IdleTimeout: cfg.Link.IdleTimeout,
		HistorySize: uart.DefaultConfig().HistorySize,
	}
}
