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
	"strings"

	"github.com/spf13/cobra"

	"github.com/jianshu93/lash/archive"
)

// Options holds the persistent flags shared by every subcommand.
type Options struct {
	NumCPUs int
	Verbose bool
}

func getOptions(cmd *cobra.Command) Options {
	return Options{
		NumCPUs: getFlagPositiveInt(cmd, "threads"),
		Verbose: getFlagBool(cmd, "verbose"),
	}
}

// checkError prints err and exits with status 1 if err is non-nil. Every
// Run function calls this immediately after a fallible operation so a
// single bad input aborts the whole command instead of limping on.
func checkError(err error) {
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be a positive integer", flag))
	}
	return v
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagUint64(cmd *cobra.Command, flag string) uint64 {
	v, err := cmd.Flags().GetUint64(flag)
	checkError(err)
	return v
}

// getFileList reads the file named by flag as a newline-delimited list
// file and returns the paths it names.
func getFileList(cmd *cobra.Command, flag string) []string {
	listFile := getFlagString(cmd, flag)
	if listFile == "" {
		checkError(fmt.Errorf("-f/--%s is required", flag))
	}
	files, err := getListFromFile(listFile)
	checkError(err)
	if len(files) == 0 {
		checkError(fmt.Errorf("no files found in %s", listFile))
	}
	return files
}

func getListFromFile(file string) ([]string, error) {
	fh, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var files []string
	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		files = append(files, line)
	}
	return files, scanner.Err()
}

func isStdin(file string) bool {
	return file == "-"
}

// resolveArchivePrefix turns a user-supplied prefix into the archive
// prefix to load. When the prefix names an existing directory, the
// directory is expected to hold exactly one complete archive triple and
// DiscoverPrefix locates it; an ambiguous or missing archive is fatal.
// Otherwise the prefix is used as-is.
func resolveArchivePrefix(prefix string) string {
	info, err := os.Stat(prefix)
	if err != nil || !info.IsDir() {
		return prefix
	}
	resolved, err := archive.DiscoverPrefix(prefix)
	checkError(err)
	return resolved
}
