// Copyright 2026 Google Inc.
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
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/go-faker/faker/v4"
	"github.com/google/btreemap"
	"github.com/spf13/cobra"
)

var shellConfig struct {
	seed int
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "interactive shell over a map of strings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := btreemap.NewWithOptions[string, string](
			btreemap.Compare[string](), btreemap.Options[string, string]{Order: order})
		if err != nil {
			return err
		}
		for i := 0; i < shellConfig.seed; i++ {
			if _, _, err := m.ReplaceOrInsert(faker.Word()+faker.Word(), faker.Word()); err != nil {
				return err
			}
		}
		sh := newShell(bufio.NewScanner(cmd.InOrStdin()), color.Output, m)
		sh.start()
		return nil
	},
}

type shell struct {
	scanner *bufio.Scanner
	out     io.Writer
	m       *btreemap.Map[string, string]

	keyColor func(a ...interface{}) string
	errColor func(a ...interface{}) string
}

func newShell(s *bufio.Scanner, out io.Writer, m *btreemap.Map[string, string]) *shell {
	return &shell{
		scanner:  s,
		out:      out,
		m:        m,
		keyColor: color.New(color.FgCyan, color.Bold).SprintFunc(),
		errColor: color.New(color.FgRed).SprintFunc(),
	}
}

// start reads commands until "exit" or the end of input.
func (s *shell) start() {
	s.printHelp()
	s.printPrompt()
	for s.scanner.Scan() {
		if !s.processInput(s.scanner.Text()) {
			return
		}
		s.printPrompt()
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.out, `
btreemap shell

Available Commands:
  SET <key> <val>            Insert or overwrite an entry
  GET <key>                  Print the value stored for key
  DEL <key>                  Remove an entry
  RANGE <lo> <hi> [incl]     Print entries between lo and hi; "-" leaves a
                             bound open, incl is one of [) [] () (]
  FIRST | LAST               Print the first or last entry
  POPFIRST | POPLAST         Remove and print the first or last entry
  DUMP                       Print the tree, one node per line
  LEN                        Print the number of entries
  STATS                      Print the shape of the tree
  EXIT                       Terminate this session
`)
}

func (s *shell) printPrompt() {
	fmt.Fprint(s.out, "> ")
}

func (s *shell) printErr(err error) {
	switch {
	case errors.Is(err, btreemap.ErrKeyNotFound):
		fmt.Fprintln(s.out, s.errColor("Key not found."))
	default:
		fmt.Fprintln(s.out, s.errColor(err.Error()))
	}
}

func (s *shell) printEntry(k, v string) {
	fmt.Fprintf(s.out, "%s: %s\n", s.keyColor(k), v)
}

// processInput runs one command line. It returns false once the session
// should end.
func (s *shell) processInput(line string) bool {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return true
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]
	switch command {
	default:
		fmt.Fprintf(s.out, "Unknown command %q\n", command)
	case "help":
		s.printHelp()
	case "set":
		if len(args) != 2 {
			fmt.Fprintln(s.out, "Usage: SET <key> <value>")
			return true
		}
		if _, _, err := s.m.ReplaceOrInsert(args[0], args[1]); err != nil {
			s.printErr(err)
		}
	case "get":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: GET <key>")
			return true
		}
		v, err := s.m.Get(args[0])
		if err != nil {
			s.printErr(err)
			return true
		}
		fmt.Fprintln(s.out, v)
	case "del":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: DEL <key>")
			return true
		}
		if _, err := s.m.Delete(args[0]); err != nil {
			s.printErr(err)
		}
	case "range":
		s.processRangeCommand(args)
	case "first", "last", "popfirst", "poplast":
		var k, v string
		var ok bool
		switch command {
		case "first":
			k, v, ok = s.m.PeekFirst()
		case "last":
			k, v, ok = s.m.PeekLast()
		case "popfirst":
			k, v, ok = s.m.PopFirst()
		case "poplast":
			k, v, ok = s.m.PopLast()
		}
		if !ok {
			fmt.Fprintln(s.out, "The map is empty.")
			return true
		}
		s.printEntry(k, v)
	case "dump":
		s.m.Dump(s.out)
	case "stats":
		fmt.Fprintln(s.out, s.m.Stats())
	case "len":
		fmt.Fprintln(s.out, s.m.Len())
	case "exit":
		return false
	}
	return true
}

func (s *shell) processRangeCommand(args []string) {
	if len(args) != 2 && len(args) != 3 {
		fmt.Fprintln(s.out, "Usage: RANGE <lo> <hi> [incl]")
		return
	}
	incl := "[)"
	if len(args) == 3 {
		incl = args[2]
	}
	incMin, incMax, err := btreemap.ParseInclusivity(incl)
	if err != nil {
		s.printErr(err)
		return
	}
	lo, hi := btreemap.Unbounded[string](), btreemap.Unbounded[string]()
	if args[0] != "-" {
		lo = btreemap.NewBound(args[0], incMin)
	}
	if args[1] != "-" {
		hi = btreemap.NewBound(args[1], incMax)
	}
	c, err := s.m.Range(lo, hi)
	if err != nil {
		s.printErr(err)
		return
	}
	for c.Next() {
		s.printEntry(c.Key(), c.Value())
	}
	if err := c.Err(); err != nil {
		s.printErr(err)
	}
}
