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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/ishell"

	scoreboard "github.com/ZaparooProject/go-scoreboard"
	"github.com/ZaparooProject/go-scoreboard/transport/uart"
)

const simKey = "$sim"

var (
	flagPort string
	flagBaud int
	flagEval bool
)

func init() {
	flag.StringVar(&flagPort, "port", "", "Serial port to write frames to (print hex if empty)")
	flag.IntVar(&flagBaud, "baud", 9600, "Baud rate")
	flag.BoolVar(&flagEval, "e", false, "Run the command given as arguments and exit")
}

func simFrom(c *ishell.Context) *simulator {
	return c.Get(simKey).(*simulator)
}

func printFrame(c *ishell.Context, buf []byte, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	c.Printf("sent % X\n", buf)
}

func commandArg(c *ishell.Context) (scoreboard.Command, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("COMMAND required, see list"))
		return 0, false
	}
	cmd, err := scoreboard.ParseCommand(c.Args[0])
	if err != nil {
		c.Err(err)
		return 0, false
	}
	return cmd, true
}

func commands() []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name:    "say",
			Aliases: []string{"s"},
			Help:    "COMMAND  send a recognised command word",
			Func: func(c *ishell.Context) {
				if cmd, ok := commandArg(c); ok {
					buf, err := simFrom(c).Say(cmd)
					printFrame(c, buf, err)
				}
			},
		},
		{
			Name: "abort",
			Help: "COMMAND  send a command frame cut short",
			Func: func(c *ishell.Context) {
				if cmd, ok := commandArg(c); ok {
					buf, err := simFrom(c).Abort(cmd)
					printFrame(c, buf, err)
				}
			},
		},
		{
			Name: "status",
			Help: "send an idle status frame",
			Func: func(c *ishell.Context) {
				buf, err := simFrom(c).Status()
				printFrame(c, buf, err)
			},
		},
		{
			Name: "raw",
			Help: "HEX...  send bytes unchanged",
			Func: func(c *ishell.Context) {
				buf, err := simFrom(c).Raw(c.Args)
				printFrame(c, buf, err)
			},
		},
		{
			Name:    "list",
			Aliases: []string{"ls"},
			Help:    "list command words",
			Func: func(c *ishell.Context) {
				for _, cmd := range scoreboard.Commands() {
					c.Printf("0x%02X  %s\n", byte(cmd), cmd)
				}
			},
		},
	}
}

func newShell(sim *simulator) *ishell.Shell {
	sh := ishell.New()
	sh.Set(simKey, sim)
	sh.SetPrompt("voice> ")
	for _, cmd := range commands() {
		sh.AddCmd(cmd)
	}
	return sh
}

func openWriter(port string, baud int, stdout io.Writer) (io.WriteCloser, error) {
	if port == "" {
		return nopCloser{hexWriter{w: stdout}}, nil
	}
	cfg := uart.DefaultConfig()
	cfg.BaudRate = baud
	link, err := uart.New(port, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", port, err)
	}
	return link, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode(flag.Args()))
}

func mainWithExitCode(args []string) int {
	w, err := openWriter(flagPort, flagBaud, os.Stdout)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = w.Close() }()

	sh := newShell(newSimulator(w))
	if flagEval {
		if len(args) == 0 {
			_, _ = fmt.Fprintln(os.Stderr, "Error: -e needs a command, e.g. say home_point_up")
			return 2
		}
		if err := sh.Process(args...); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	sh.Println("DF2301Q voice module simulator. Type help, or list for command words.")
	if flagPort == "" {
		sh.Println("No -port given; frames are printed as hex.")
	} else {
		sh.Println("Writing to " + strings.TrimSpace(flagPort))
	}
	sh.Run()
	return 0
}
