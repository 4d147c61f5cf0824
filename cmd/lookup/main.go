// Command lookup segments one Khmer sentence and prints its tokens with
// romanization, IPA and meaning as JSON.
//
// Usage:
//
//	lookup [-config path] [-tokens-only] <sentence>
//
// Words of the sentence may also be passed as separate arguments; they are
// joined with spaces. Logs go to stderr, the result to stdout.
//
// Exit codes: 0 = success, 1 = error, 2 = usage error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/heartmarshall/khmer-lookup/internal/app"
	"github.com/heartmarshall/khmer-lookup/internal/config"
	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

var errUsage = errors.New("usage")

type output struct {
	Tokens  []string                `json:"tokens"`
	Results domain.EnrichmentResult `json:"results,omitempty"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "lookup:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to YAML config (overrides CONFIG_PATH)")
	tokensOnly := fs.Bool("tokens-only", false, "print tokens without contacting the lexicon")
	version := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: lookup [-config path] [-tokens-only] <sentence>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}

	if *version {
		fmt.Fprintln(stdout, app.BuildVersion())
		return nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}

	sentence := strings.Join(fs.Args(), " ")
	if err := domain.ValidateSentence(sentence, cfg.Lookup.MaxSentenceRunes); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	pipeline, err := app.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	var out output
	if *tokensOnly {
		out.Tokens = pipeline.Service.Tokenize(sentence)
	} else {
		out.Tokens, out.Results = pipeline.Service.Lookup(ctx, sentence)
	}
	if out.Tokens == nil {
		out.Tokens = []string{}
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
