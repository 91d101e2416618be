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
	"fmt"
	"runtime"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jianshu93/lash/archive"
	"github.com/jianshu93/lash/kmer"
	"github.com/jianshu93/lash/sketch"
	"github.com/jianshu93/lash/sketcher"
)

var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "sketch FASTA/Q files into a HMH/HLL/ULL archive",
	Long: `sketch FASTA/Q files into a HMH/HLL/ULL archive

Builds one cardinality/similarity sketch per input file and writes the
result as a three-file archive (<prefix>_sketches.bin, _files.json,
_parameters.json) that dist can later compare against.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)

		files := getFileList(cmd, "list")

		outPrefix := getFlagString(cmd, "out-prefix")
		if outPrefix == "" {
			checkError(fmt.Errorf("-o/--out-prefix is required"))
		}

		k := getFlagPositiveInt(cmd, "kmer-len")
		aminoAcid := getFlagBool(cmd, "aa")
		algo := sketch.Algorithm(getFlagString(cmd, "algorithm"))
		precision := getFlagInt(cmd, "precision")
		seed := getFlagUint64(cmd, "seed")

		if aminoAcid {
			checkError(kmer.CheckAAK(k))
		} else {
			checkError(kmer.CheckK(k))
		}

		params := sketch.Params{Algorithm: algo, Precision: precision}
		if _, err := sketch.New(params); err != nil {
			checkError(err)
		}

		if opt.Verbose {
			log.Infof("sketching %s file(s) with k=%d algorithm=%s", humanize.Comma(int64(len(files))), k, algo)
		}

		results, err := sketcher.SketchFiles(files, sketcher.Options{
			K:         k,
			AminoAcid: aminoAcid,
			Params:    params,
			Seed:      seed,
			Threads:   opt.NumCPUs,
		})
		checkError(err)

		sketches := make([]sketch.Sketch, len(results))
		for i, r := range results {
			sketches[i] = r.Sketch
		}

		molecule := archive.Nucleotide
		if aminoAcid {
			molecule = archive.AminoAcid
		}
		archiveParams := archive.Parameters{
			K:         k,
			Algorithm: string(algo),
			Seed:      seed,
			Precision: precision,
			Molecule:  molecule,
		}
		checkError(archive.Write(outPrefix, files, archiveParams, sketches, opt.NumCPUs))

		if opt.Verbose {
			log.Info("sketches written.")
		}
	},
}

func init() {
	RootCmd.AddCommand(sketchCmd)

	sketchCmd.Flags().StringP("list", "f", "", "listfile: newline-delimited FASTA/Q file paths to sketch (required)")
	sketchCmd.Flags().StringP("out-prefix", "o", "", "output archive prefix (required)")
	sketchCmd.Flags().IntP("kmer-len", "k", 21, "k-mer length")
	sketchCmd.Flags().StringP("algorithm", "a", "hll", "sketch algorithm: hmh, hll, or ull")
	sketchCmd.Flags().IntP("precision", "p", 12, "sketch precision (log2 register count), hll/ull only")
	sketchCmd.Flags().Uint64P("seed", "s", 42, "hash seed for hll/ull item hashing")
	sketchCmd.Flags().Bool("aa", false, "treat input as amino-acid sequence")
}
