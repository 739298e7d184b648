//go:build !lambda

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

const usage = `Usage: cocktail-packer [flags] [recipes.csv|recipes.json|-]

Finds the largest set of items whose combined resources fit the budget.
Input lines are "name,resource1,resource2,..."; stdin is read when no file
is given or the file is "-".

Flags:
`

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func run(ctx context.Context, fs *pflag.FlagSet, stdout, stderr io.Writer) error {
	v, err := NewViper(fs)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		return err
	}

	log, flush, err := NewLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer flush()

	data, err := readInput(fs.Args())
	if err != nil {
		return err
	}
	in, err := ParseInput(data, cfg.InputFormat, cfg.Strict, log)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if in.Budget != nil && !budgetExplicit(v, fs) {
		cfg.Budget = *in.Budget
	}

	var m *Metrics
	if cfg.Metrics {
		m = NewMetrics()
	}

	rep, err := runSolve(ctx, in, cfg, log, m)
	if err != nil {
		return err
	}
	if err := WriteReport(stdout, rep, cfg.Format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := m.WriteText(stderr); err != nil {
		return err
	}
	return nil
}

func main() {
	fs := pflag.CommandLine
	RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, fs, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
