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

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"

	gzip "github.com/klauspost/pgzip"
	"github.com/spf13/cobra"

	"github.com/jianshu93/lash/archive"
	"github.com/jianshu93/lash/distengine"
	"github.com/jianshu93/lash/sketch"
)

var distCmd = &cobra.Command{
	Use:   "dist",
	Short: "estimate pairwise mutation distance between two sketch archives",
	Long: `estimate pairwise mutation distance between two sketch archives

Loads a reference and a query archive (written by sketch), validates
that they share the same k, algorithm and parameters, and emits a TSV of
reference/query/distance for every requested pair.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		refPrefix := getFlagString(cmd, "ref-prefix")
		queryPrefix := getFlagString(cmd, "query-prefix")
		if refPrefix == "" {
			checkError(fmt.Errorf("-r/--ref-prefix is required"))
		}
		if queryPrefix == "" {
			checkError(fmt.Errorf("-q/--query-prefix is required"))
		}
		refPrefix = resolveArchivePrefix(refPrefix)
		queryPrefix = resolveArchivePrefix(queryPrefix)

		estimator := getFlagString(cmd, "estimator")
		checkError(sketch.CheckEstimator(estimator))

		modelCode := getFlagInt(cmd, "model")
		var model distengine.DistanceModel
		switch modelCode {
		case 1:
			model = distengine.ModelPoisson
		case 0:
			model = distengine.ModelBinomial
		default:
			checkError(fmt.Errorf("unsupported -m/--model %d: must be 0 (binomial) or 1 (poisson)", modelCode))
		}

		matrix := getFlagBool(cmd, "dm")
		fp32 := getFlagBool(cmd, "fp32")
		outFile := getFlagString(cmd, "out")

		pairs, err := distengine.Compute(refPrefix, queryPrefix, distengine.Options{
			Model:     model,
			Estimator: estimator,
			Threads:   opt.NumCPUs,
			Matrix:    matrix,
		})
		checkError(err)

		w, closeFn := distOutput(outFile)
		defer closeFn()

		if matrix {
			ref, err := archive.Load(refPrefix)
			checkError(err)
			writeMatrix(w, ref.Files, pairs, fp32)
		} else {
			writeRows(w, pairs, fp32)
		}
		checkError(w.Flush())

		fmt.Println("Distances computed.")
		if opt.Verbose {
			log.Info("distances computed.")
		}
	},
}

// formatDistance renders d at 6 decimal places. fp32 first rounds d
// through a float32, so single-precision callers see the same precision
// loss a float32 pipeline would have accumulated, not just a narrower
// printf width.
func formatDistance(d float64, fp32 bool) string {
	if fp32 {
		d = float64(float32(d))
	}
	return fmt.Sprintf("%.6f", d)
}

func writeRows(w *bufio.Writer, pairs []distengine.Pair, fp32 bool) {
	fmt.Fprintln(w, "Reference\tQuery\tDistance")
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Reference, p.Query, formatDistance(p.Distance, fp32))
	}
}

// writeMatrix renders the triangular pairs Compute returns for
// Options.Matrix runs as a lower-triangular TSV: a header row of query
// names, then one row per reference holding only the cells up to and
// including the diagonal.
func writeMatrix(w *bufio.Writer, names []string, pairs []distengine.Pair, fp32 bool) {
	fmt.Fprintln(w, "\t"+strings.Join(names, "\t"))
	for i, name := range names {
		row := distengine.TriangularRow(pairs, i)
		cells := make([]string, len(row))
		for j, p := range row {
			cells[j] = formatDistance(p.Distance, fp32)
		}
		fmt.Fprintln(w, name+"\t"+strings.Join(cells, "\t"))
	}
}

// distOutput opens the dist TSV output, gzip-compressing on the fly
// (via pgzip, a parallel-decompression-compatible gzip) when outFile
// ends in .gz.
func distOutput(outFile string) (*bufio.Writer, func()) {
	if outFile == "" || isStdin(outFile) {
		w := bufio.NewWriter(os.Stdout)
		return w, func() { w.Flush() }
	}
	fh, err := os.Create(outFile)
	checkError(err)

	if strings.HasSuffix(outFile, ".gz") {
		gw := gzip.NewWriter(fh)
		w := bufio.NewWriter(gw)
		return w, func() {
			w.Flush()
			gw.Close()
			fh.Close()
		}
	}

	w := bufio.NewWriter(fh)
	return w, func() {
		w.Flush()
		fh.Close()
	}
}

func init() {
	RootCmd.AddCommand(distCmd)

	distCmd.Flags().StringP("ref-prefix", "r", "", "reference archive prefix, or a directory holding exactly one archive (required)")
	distCmd.Flags().StringP("query-prefix", "q", "", "query archive prefix, or a directory holding exactly one archive (required)")
	distCmd.Flags().StringP("out", "o", "", "output TSV file, gzip-compressed if it ends in .gz (default: stdout)")
	distCmd.Flags().StringP("estimator", "e", "fgra", "ULL cardinality estimator: fgra or ml")
	distCmd.Flags().IntP("model", "m", 1, "mutation distance model: 1=poisson (default), 0=binomial")
	distCmd.Flags().Bool("dm", false, "emit a triangular all-vs-all matrix (requires ref and query to share the same file list)")
	distCmd.Flags().Bool("fp32", false, "round distances through single precision before printing")
}
