package app

import (
	"fmt"
	"log/slog"

	"github.com/heartmarshall/khmer-lookup/internal/adapter/provider/wiktionary"
	"github.com/heartmarshall/khmer-lookup/internal/config"
	"github.com/heartmarshall/khmer-lookup/internal/extract"
	"github.com/heartmarshall/khmer-lookup/internal/rewrite"
	"github.com/heartmarshall/khmer-lookup/internal/segmenter"
	"github.com/heartmarshall/khmer-lookup/internal/service/lookup"
)

// Pipeline holds the wired lookup components shared by the server and the CLI.
type Pipeline struct {
	Service *lookup.Service
	Lexicon *wiktionary.Provider
}

// NewPipeline builds the segmenter, override rules, extractor, lexicon client
// and lookup service from cfg.
func NewPipeline(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	khmer, err := segmenter.NewDefault(cfg.Segmenter.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("segmenter: %w", err)
	}
	logger.Debug("segmenter dictionary loaded", slog.Int("words", khmer.Len()))

	rules := rewrite.Default()
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rewrite rules: %w", err)
	}

	ext, err := extract.NewSelectorExtractor(selectorSet(cfg.Extract))
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	lex := wiktionary.NewProvider(cfg.Lexicon, logger)
	svc := lookup.NewService(logger, cfg.Lookup, segmenter.NewSafe(khmer, logger), rules, lex, ext)

	return &Pipeline{Service: svc, Lexicon: lex}, nil
}

func selectorSet(cfg config.ExtractConfig) extract.SelectorSet {
	return extract.SelectorSet{
		Heading:      cfg.Heading,
		Marker:       cfg.Marker,
		Romanization: cfg.Romanization,
		IPA:          cfg.IPA,
		Meaning:      cfg.Meaning,
	}
}
