// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cmd wires the lash command-line interface: k-mer sketching and
// sketch-based distance estimation.
package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// VERSION is the lash release version.
const VERSION = "0.1.0"

var log = logging.MustGetLogger("lash")

// RootCmd is the base command executed when lash is invoked without a
// subcommand.
var RootCmd = &cobra.Command{
	Use:   "lash",
	Short: "k-mer sketch based genome/metagenome distance estimation",
	Long: fmt.Sprintf(`lash - k-mer sketch based distance estimation

A command-line tool for sketching FASTA/Q files into compact
HyperMinHash/HyperLogLog/UltraLogLog cardinality sketches and estimating
pairwise mutation distances between them via Jaccard similarity.

Version: %s

`, VERSION),
}

// Execute runs the root command. Called once from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()

	RootCmd.PersistentFlags().IntP("threads", "t", defaultThreads, "number of worker threads to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose information")
}
