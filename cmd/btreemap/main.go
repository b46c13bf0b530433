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

// Command btreemap benchmarks btreemap against other ordered containers and
// provides an interactive shell over a string map.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "btreemap [command] (flags)",
	Short: "btreemap benchmarking/introspection tool",
	Long:  ``,
}

func main() {
	log.SetFlags(0)

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		benchCmd,
		shellCmd,
	)

	for _, cmd := range []*cobra.Command{benchCmd, shellCmd} {
		cmd.Flags().IntVarP(
			&order, "order", "o", 32, "minimum degree of the tree")
	}

	benchCmd.Flags().IntVarP(
		&benchConfig.keys, "keys", "n", 100000, "number of keys in each workload")
	benchCmd.Flags().Uint64Var(
		&benchConfig.seed, "seed", 1, "seed for the key permutations")
	benchCmd.Flags().BoolVar(
		&benchConfig.compare, "compare", false,
		"also run the workloads against google/btree, GoLLRB and an unordered swiss map")
	benchCmd.Flags().StringVar(
		&benchConfig.metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address while running")
	benchCmd.Flags().Float64Var(
		&benchConfig.rate, "rate", 0, "maximum operations per second (0 means unlimited)")
	benchCmd.Flags().BoolVar(
		&benchConfig.plot, "plot", false, "plot the btreemap latency distribution of each operation")

	shellCmd.Flags().IntVar(
		&shellConfig.seed, "seed", 0, "number of random words to insert before starting")

	if err := rootCmd.Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}

// order is shared by every command.
var order int
