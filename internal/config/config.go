// Copyright 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads node configuration from a YAML file and
// SCOREBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. SCOREBOARD_LINK_PORT.
const EnvPrefix = "SCOREBOARD"

// LogConfig controls debug output
type LogConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

// LinkConfig selects the voice module interface
type LinkConfig struct {
	// Type is uart, i2c or replay
	Type         string        `mapstructure:"type" yaml:"type"`
	Port         string        `mapstructure:"port" yaml:"port"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Baud         int           `mapstructure:"baud" yaml:"baud"`
	// Volume and WakeTime are applied over I2C only; 0 leaves the module
	// setting alone
	Volume   int `mapstructure:"volume" yaml:"volume"`
	WakeTime int `mapstructure:"wake_time" yaml:"wake_time"`
}

// RadioConfig selects how advertisements travel
type RadioConfig struct {
	// Type is ble or mqtt
	Type     string        `mapstructure:"type" yaml:"type"`
	Broker   string        `mapstructure:"broker" yaml:"broker"`
	Name     string        `mapstructure:"name" yaml:"name"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// DisplayConfig selects the observer output
type DisplayConfig struct {
	// Type is spi or console
	Type       string `mapstructure:"type" yaml:"type"`
	Port       string `mapstructure:"port" yaml:"port"`
	Brightness int    `mapstructure:"brightness" yaml:"brightness"`
}

// IndicatorConfig selects the broadcaster status LEDs
type IndicatorConfig struct {
	// Type is gpio, log or none
	Type      string   `mapstructure:"type" yaml:"type"`
	Heartbeat string   `mapstructure:"heartbeat" yaml:"heartbeat"`
	Run       string   `mapstructure:"run" yaml:"run"`
	Busy      []string `mapstructure:"busy" yaml:"busy"`
}

// CaptureConfig controls receive event capture
type CaptureConfig struct {
	// Record writes every receive event to this file
	Record string `mapstructure:"record" yaml:"record"`
	// Replay reads events from this file instead of the link
	Replay string  `mapstructure:"replay" yaml:"replay"`
	Speed  float64 `mapstructure:"speed" yaml:"speed"`
}

// HTTPConfig controls the status server
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	CommandRate  float64       `mapstructure:"command_rate" yaml:"command_rate"`
	CommandBurst int           `mapstructure:"command_burst" yaml:"command_burst"`
	Enable       bool          `mapstructure:"enable" yaml:"enable"`
	Metrics      bool          `mapstructure:"metrics" yaml:"metrics"`
}

// Config is the full node configuration.
type Config struct {
	Log            LogConfig       `mapstructure:"log" yaml:"log"`
	Link           LinkConfig      `mapstructure:"link" yaml:"link"`
	Radio          RadioConfig     `mapstructure:"radio" yaml:"radio"`
	Display        DisplayConfig   `mapstructure:"display" yaml:"display"`
	Indicators     IndicatorConfig `mapstructure:"indicators" yaml:"indicators"`
	Capture        CaptureConfig   `mapstructure:"capture" yaml:"capture"`
	HTTP           HTTPConfig      `mapstructure:"http" yaml:"http"`
	StrictChecksum bool            `mapstructure:"strict_checksum" yaml:"strict_checksum"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			Type:         "uart",
			Baud:         9600,
			IdleTimeout:  20 * time.Millisecond,
			PollInterval: 50 * time.Millisecond,
		},
		Radio: RadioConfig{
			Type:     "ble",
			Broker:   "mqtt://localhost:1883/scoreboard",
			Name:     scoreboard.DeviceName,
			Interval: scoreboard.DefaultAdvertisingInterval,
		},
		Display: DisplayConfig{
			Type:       "spi",
			Port:       "SPI0.0",
			Brightness: 64,
		},
		Indicators: IndicatorConfig{
			Type:      "log",
			Heartbeat: "GPIO27",
			Run:       "GPIO17",
			Busy:      []string{"GPIO22"},
		},
		Capture: CaptureConfig{Speed: 1},
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			CommandRate:  2,
			CommandBurst: 4,
			Metrics:      true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.dir", d.Log.Dir)
	v.SetDefault("log.debug", d.Log.Debug)

	v.SetDefault("link.type", d.Link.Type)
	v.SetDefault("link.port", d.Link.Port)
	v.SetDefault("link.baud", d.Link.Baud)
	v.SetDefault("link.idle_timeout", d.Link.IdleTimeout)
	v.SetDefault("link.poll_interval", d.Link.PollInterval)
	v.SetDefault("link.volume", d.Link.Volume)
	v.SetDefault("link.wake_time", d.Link.WakeTime)

	v.SetDefault("radio.type", d.Radio.Type)
	v.SetDefault("radio.broker", d.Radio.Broker)
	v.SetDefault("radio.name", d.Radio.Name)
	v.SetDefault("radio.interval", d.Radio.Interval)

	v.SetDefault("display.type", d.Display.Type)
	v.SetDefault("display.port", d.Display.Port)
	v.SetDefault("display.brightness", d.Display.Brightness)

	v.SetDefault("indicators.type", d.Indicators.Type)
	v.SetDefault("indicators.heartbeat", d.Indicators.Heartbeat)
	v.SetDefault("indicators.run", d.Indicators.Run)
	v.SetDefault("indicators.busy", d.Indicators.Busy)

	v.SetDefault("capture.record", d.Capture.Record)
	v.SetDefault("capture.replay", d.Capture.Replay)
	v.SetDefault("capture.speed", d.Capture.Speed)

	v.SetDefault("http.enable", d.HTTP.Enable)
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("http.read_timeout", d.HTTP.ReadTimeout)
	v.SetDefault("http.write_timeout", d.HTTP.WriteTimeout)
	v.SetDefault("http.command_rate", d.HTTP.CommandRate)
	v.SetDefault("http.command_burst", d.HTTP.CommandBurst)
	v.SetDefault("http.metrics", d.HTTP.Metrics)

	v.SetDefault("strict_checksum", d.StrictChecksum)
}

// Load reads path, or scoreboard.yaml in the working directory when path
// is empty, then applies environment overrides. A missing default file is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("scoreboard")
		v.SetConfigType("yaml")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s %q, want one of %s",
		scoreboard.ErrInvalidParameter, field, value, strings.Join(allowed, ", "))
}

// Validate checks the selectors and ranges.
func (c *Config) Validate() error {
	errs := []error{
		oneOf("link.type", c.Link.Type, "uart", "i2c", "replay"),
		oneOf("radio.type", c.Radio.Type, "ble", "mqtt"),
		oneOf("display.type", c.Display.Type, "spi", "console"),
		oneOf("indicators.type", c.Indicators.Type, "gpio", "log", "none"),
	}
	if c.Link.Type == "replay" && c.Capture.Replay == "" {
		errs = append(errs, fmt.Errorf("%w: link.type replay needs capture.replay", scoreboard.ErrInvalidParameter))
	}
	if c.Link.Volume < 0 || c.Link.Volume > 7 {
		errs = append(errs, fmt.Errorf("%w: link.volume %d out of range 0-7", scoreboard.ErrInvalidParameter, c.Link.Volume))
	}
	if c.Link.WakeTime < 0 || c.Link.WakeTime > 255 {
		errs = append(errs, fmt.Errorf("%w: link.wake_time %d out of range 0-255", scoreboard.ErrInvalidParameter, c.Link.WakeTime))
	}
	if c.Display.Brightness < 0 || c.Display.Brightness > 255 {
		errs = append(errs, fmt.Errorf("%w: display.brightness %d out of range 0-255", scoreboard.ErrInvalidParameter, c.Display.Brightness))
	}
	if c.Radio.Name == "" {
		errs = append(errs, fmt.Errorf("%w: radio.name is empty", scoreboard.ErrInvalidParameter))
	}
	return errors.Join(errs...)
}

// WriteExample writes the default configuration as YAML.
func WriteExample(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Default()); err != nil {
		return fmt.Errorf("encode example config: %w", err)
	}
	return enc.Close()
}
