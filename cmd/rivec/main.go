// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Command rivec is the thin shell around the compiler core: it reads
// a source file, runs the library pipeline, and writes or reports the
// result. Handing the emitted Rust to the host toolchain stays the
// caller's job.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rive-lang/rivec/compiler"
	"github.com/rive-lang/rivec/internal/rlog"
)

func main() {
	// A .env in the working directory may set RIVEC_DEBUG; absence is
	// fine.
	_ = godotenv.Load()

	if os.Getenv("RIVEC_DEBUG") == "1" {
		rlog.SetEnabled(true)
	}

	root := &cobra.Command{
		Use:           "rivec",
		Short:         "rivec compiles Rive source files to Rust",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newCheckCmd(), newBuildCmd(), newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Type-check a Rive source file without emitting code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			if cerr := compiler.Check(string(source)); cerr != nil {
				fmt.Fprint(os.Stderr, cerr.Explain(string(source)))
				os.Exit(1)
			}

			fmt.Printf("%s: ok\n", args[0])

			return nil
		},
	}
}

func newBuildCmd() *cobra.Command {
	var release bool

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a Rive source file to Rust under target/",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := build(args[0], release)
			if err != nil {
				return err
			}

			fmt.Printf("wrote %s; hand it to the Rust toolchain to produce a binary\n", out)

			return nil
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "note an optimized host build in the hand-off")

	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Compile a Rive source file and report the artifact to run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := build(args[0], false)
			if err != nil {
				return err
			}

			fmt.Printf("wrote %s; compiling and running it is the host toolchain's job\n", out)

			return nil
		},
	}
}

// build compiles path and writes the emitted Rust next to it under
// target/.
func build(path string, release bool) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	rust, cerr := compiler.Compile(string(source))
	if cerr != nil {
		fmt.Fprint(os.Stderr, cerr.Explain(string(source)))
		os.Exit(1)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Join(filepath.Dir(path), "target")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	out := filepath.Join(dir, name+".rs")

	if err := os.WriteFile(out, []byte(rust), 0o644); err != nil {
		return "", err
	}

	if release {
		rlog.Debugf("build: release hand-off requested for %s", out)
	}

	return out, nil
}
