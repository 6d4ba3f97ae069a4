// Command pages_deploy publishes a static site folder to a
// Pages-backed repository. It creates the repository when
// needed, commits the folder and pushes it.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"

	"github.com/byte4ever/pages_deploy/gitops/publish"
)

func main() {
	ok, err := run(
		context.Background(),
		os.Args[1:],
		os.Stdout,
		os.Getenv,
	)
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(2)
	}

	if !ok {
		os.Exit(1)
	}
}

// run parses args, deploys and prints the outcome to w.
// It reports whether the deployment succeeded; err is
// reserved for usage and setup errors.
func run(
	ctx context.Context,
	args []string,
	w io.Writer,
	getenv func(string) string,
) (bool, error) {
	const errCtx = "running pages_deploy"

	opts, err := parseFlags(args, getenv)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	)))

	sq, err := newSequencer(opts)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	out := sq.Run(ctx, publish.Request{
		Dir:     opts.settings.Dir,
		Account: opts.settings.Account,
		Token:   opts.token,
	})

	if err := printOutcome(w, out, opts.json); err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return out.Success, nil
}

// printOutcome writes out as text or as a JSON object.
func printOutcome(
	w io.Writer,
	out publish.Outcome,
	asJSON bool,
) error {
	const errCtx = "printing outcome"

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}

		return nil
	}

	if _, err := fmt.Fprintln(w, out.Message); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}
