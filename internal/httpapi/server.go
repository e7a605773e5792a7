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

// Package httpapi serves node status and manual score commands over HTTP.
package httpapi

import (
	"context"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Config holds HTTP server options
type Config struct {
	Addr         string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	// CommandRate is the sustained manual commands per second
	CommandRate float64 `mapstructure:"command_rate" yaml:"command_rate"`
	// CommandBurst is the manual command bucket size
	CommandBurst int `mapstructure:"command_burst" yaml:"command_burst"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:         ":8080",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		CommandRate:  2,
		CommandBurst: 4,
	}
}

// StateSource reports the node's current match state.
type StateSource interface {
	State() scoreboard.MatchState
}

// CommandSink applies a manual command.
type CommandSink interface {
	Inject(cmd scoreboard.Command) (scoreboard.MatchState, error)
}

// StateResponse is the JSON form of a match state.
type StateResponse struct {
	Serving     string `json:"serving"`
	Payload     string `json:"payload"`
	HomePoints  uint8  `json:"home_points"`
	GuestPoints uint8  `json:"guest_points"`
	HomeSets    uint8  `json:"home_sets"`
	GuestSets   uint8  `json:"guest_sets"`
}

// NewStateResponse converts s.
func NewStateResponse(s scoreboard.MatchState) StateResponse {
	p := scoreboard.Encode(s)
	return StateResponse{
		HomePoints:  s.HomePoints,
		GuestPoints: s.GuestPoints,
		HomeSets:    s.HomeSets,
		GuestSets:   s.GuestSets,
		Serving:     s.Serving.String(),
		Payload:     hex.EncodeToString(p[:]),
	}
}

// CommandRequest is the body of POST /api/v1/commands.
type CommandRequest struct {
	Command string `json:"command" binding:"required"`
}

// Options wires the server to a node.
type Options struct {
	State    StateSource
	Commands CommandSink
	Metrics  http.Handler
	Ready    func() bool
}

// Server is the node HTTP server.
type Server struct {
	srv     *http.Server
	limiter *rate.Limiter
	opts    Options
}

// New builds the router. Commands is optional; without it the command
// route is not registered.
func New(cfg *Config, opts Options) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(cfg.CommandRate), max(cfg.CommandBurst, 1)),
	}
	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if s.opts.Ready == nil || s.opts.Ready() {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if s.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.opts.Metrics))
	}

	api := r.Group("/api/v1")
	api.GET("/state", s.getState)
	api.GET("/commands", listCommands)
	if s.opts.Commands != nil {
		api.POST("/commands", s.postCommand)
	}
	return r
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) getState(c *gin.Context) {
	if s.opts.State == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no state source"})
		return
	}
	c.JSON(http.StatusOK, NewStateResponse(s.opts.State.State()))
}

func listCommands(c *gin.Context) {
	cmds := scoreboard.Commands()
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.String())
	}
	c.JSON(http.StatusOK, gin.H{"commands": names})
}

func (s *Server) postCommand(c *gin.Context) {
	if !s.limiter.Allow() {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited"})
		return
	}

	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd, err := scoreboard.ParseCommand(req.Command)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := s.opts.Commands.Inject(cmd)
	switch {
	case errors.Is(err, scoreboard.ErrInvalidParameter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		log.Warn().Err(err).Stringer("command", cmd).Msg("manual command not advertised")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "state": NewStateResponse(state)})
		return
	}
	log.Info().Stringer("command", cmd).Stringer("state", state).Msg("manual command applied")
	c.JSON(http.StatusOK, NewStateResponse(state))
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
