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

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	err   error
	match *scoreboard.Match
}

func newFakeNode() *fakeNode {
	return &fakeNode{match: scoreboard.NewMatch()}
}

func (f *fakeNode) State() scoreboard.MatchState { return f.match.State() }

func (f *fakeNode) Inject(cmd scoreboard.Command) (scoreboard.MatchState, error) {
	return f.match.Apply(cmd), f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	t.Parallel()

	ready := false
	s := New(nil, Options{Ready: func() bool { return ready }})

	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s.Handler(), http.MethodGet, "/readyz", "").Code)
	ready = true
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodGet, "/readyz", "").Code)
}

func TestGetState(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	for range 5 {
		node.match.Apply(scoreboard.CmdHomePointUp)
	}
	node.match.Apply(scoreboard.CmdHomeServing)
	s := New(nil, Options{State: node})

	rec := do(t, s.Handler(), http.MethodGet, "/api/v1/state", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint8(5), got.HomePoints)
	assert.Equal(t, "home", got.Serving)
	assert.Equal(t, "5900050000000100", got.Payload)
}

func TestGetState_NoSource(t *testing.T) {
	t.Parallel()

	s := New(nil, Options{})
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s.Handler(), http.MethodGet, "/api/v1/state", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s.Handler(), http.MethodPost, "/api/v1/commands", `{"command":"reset"}`).Code)
}

func TestListCommands(t *testing.T) {
	t.Parallel()

	rec := do(t, New(nil, Options{}).Handler(), http.MethodGet, "/api/v1/commands", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "home_point_up")
	assert.Contains(t, rec.Body.String(), "reset")
}

func TestPostCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		injErr   error
		wantCode int
	}{
		{name: "by name", body: `{"command":"guest_point_up"}`, wantCode: http.StatusOK},
		{name: "by hex", body: `{"command":"0x09"}`, wantCode: http.StatusOK},
		{name: "unknown", body: `{"command":"timeout"}`, wantCode: http.StatusBadRequest},
		{name: "missing", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "not json", body: `nope`, wantCode: http.StatusBadRequest},
		{name: "advertiser down", body: `{"command":"reset"}`, injErr: errors.New("radio"), wantCode: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node := newFakeNode()
			node.err = tt.injErr
			s := New(&Config{CommandRate: 100, CommandBurst: 10}, Options{State: node, Commands: node})

			rec := do(t, s.Handler(), http.MethodPost, "/api/v1/commands", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestPostCommand_RateLimited(t *testing.T) {
	t.Parallel()

	node := newFakeNode()
	s := New(&Config{CommandRate: 0.001, CommandBurst: 2}, Options{State: node, Commands: node})

	body := `{"command":"home_point_up"}`
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodPost, "/api/v1/commands", body).Code)
	assert.Equal(t, http.StatusOK, do(t, s.Handler(), http.MethodPost, "/api/v1/commands", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s.Handler(), http.MethodPost, "/api/v1/commands", body).Code)
	assert.Equal(t, uint8(2), node.State().HomePoints)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("scoreboard_up 1\n"))
	})
	rec := do(t, New(nil, Options{Metrics: metrics}).Handler(), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "scoreboard_up 1\n", rec.Body.String())
}
