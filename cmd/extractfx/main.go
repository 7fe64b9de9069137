package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	extractfx "github.com/BengtGustafsson/extract-fx"
	"github.com/BengtGustafsson/extract-fx/internal/selftest"
)

const historyFile = ".extractfx_history"

var (
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

var (
	flagName     string
	flagLineDirs bool
	flagTest     bool
)

var rootCmd = &cobra.Command{
	Use:   "extractfx [flags] [input [output]]",
	Short: "Extract f/x string literals from C++ sources",
	Long: `extractfx rewrites f"..." and x"..." string literals into calls to a
formatting function, hoisting the interpolated expressions as positional
arguments. With no input file it reads standard input; with no output file it
writes standard output.`,
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTest {
			fmt.Fprintln(os.Stderr, "Performing self test")
			os.Exit(selftest.Run(os.Stderr))
		}
		return extract(args)
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Rewrite input interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl()
	},
}

func extract(args []string) error {
	in := io.Reader(os.Stdin)
	path := "<stdin>"
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
		path = args[0]
	}
	out := io.Writer(os.Stdout)
	if len(args) > 1 {
		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	cfg := extractfx.Config{
		FunctionName:   flagName,
		SourcePath:     path,
		LineDirectives: flagLineDirs,
	}
	return extractfx.Process(cfg, in, out)
}

// repl rewrites input line by line. When a rewrite stops because the input
// ended mid-token, for instance in an open raw literal, the prompt switches
// to a continuation prompt and more lines are gathered.
func repl() error {
	fmt.Println("extractfx repl, Ctrl+D exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	cfg := extractfx.Config{FunctionName: flagName, SourcePath: "<repl>"}
	for {
		var b strings.Builder
		prompt := "fx> "
		for {
			line, err := ln.Prompt(prompt)
			if err != nil {
				fmt.Println()
				return nil
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line)
			src := b.String()
			if strings.TrimSpace(src) == "" {
				break
			}

			var out strings.Builder
			rerr := extractfx.Process(cfg, strings.NewReader(src), &out)
			var early *extractfx.EarlyEndError
			if errors.As(rerr, &early) {
				prompt = "..> " // an open token: keep reading lines
				continue
			}
			if rerr != nil {
				fmt.Println(errStyle.Render(rerr.Error()))
			} else {
				fmt.Println(okStyle.Render(out.String()))
				ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
			}
			break
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagName, "name", extractfx.DefaultFunction,
		"formatting function emitted for f literals; a trailing * appends the field count")
	rootCmd.Flags().BoolVar(&flagLineDirs, "line-directives", false,
		"emit #line markers around hoisted expressions")
	rootCmd.Flags().BoolVar(&flagTest, "test", false,
		"run the embedded self test and exit with the failure count")
	rootCmd.AddCommand(replCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}
