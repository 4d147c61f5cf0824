// Package lookup turns a Khmer sentence into tokens enriched with
// romanization, IPA and meaning.
package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/khmer-lookup/internal/config"
	"github.com/heartmarshall/khmer-lookup/internal/domain"
	"github.com/heartmarshall/khmer-lookup/internal/extract"
	"github.com/heartmarshall/khmer-lookup/internal/rewrite"
)

// tokenSegmenter splits a sentence into word tokens.
type tokenSegmenter interface {
	Segment(sentence string) []string
}

// lexicon fetches the raw entry page for a token.
type lexicon interface {
	Fetch(ctx context.Context, word string) (domain.RawMarkup, error)
}

// fieldExtractor pulls fields out of an entry page.
type fieldExtractor interface {
	Extract(markup string) (extract.Fields, error)
}

// Service runs the segment, rewrite and enrich pipeline.
type Service struct {
	log          *slog.Logger
	seg          tokenSegmenter
	rules        rewrite.Rules
	lex          lexicon
	ext          fieldExtractor
	concurrency  int
	tokenTimeout time.Duration
}

// NewService creates a lookup service. rules is copied.
func NewService(
	log *slog.Logger,
	cfg config.LookupConfig,
	seg tokenSegmenter,
	rules rewrite.Rules,
	lex lexicon,
	ext fieldExtractor,
) *Service {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		log:          log.With("service", "lookup"),
		seg:          seg,
		rules:        rules.Clone(),
		lex:          lex,
		ext:          ext,
		concurrency:  concurrency,
		tokenTimeout: cfg.TokenTimeout,
	}
}

// Tokenize normalizes, segments and rewrites sentence. It performs no lookups.
func (s *Service) Tokenize(sentence string) []string {
	tokens := s.seg.Segment(domain.NormalizeSentence(sentence))
	return rewrite.Rewrite(tokens, s.rules)
}

// Lookup tokenizes sentence and enriches the tokens.
func (s *Service) Lookup(ctx context.Context, sentence string) ([]string, domain.EnrichmentResult) {
	tokens := s.Tokenize(sentence)
	return tokens, s.Enrich(ctx, tokens)
}

// Enrich looks up every token and returns one record per token, in order.
// Failures leave the affected record's fields empty; it never fails as a whole.
func (s *Service) Enrich(ctx context.Context, tokens []string) domain.EnrichmentResult {
	return s.EnrichEach(ctx, tokens, nil)
}

// EnrichEach is Enrich with a callback invoked once for every record that
// completes, in completion order. Calls to fn are serialized.
// After ctx is cancelled no new lookups start; records that never ran keep
// only their Name and are not reported to fn.
func (s *Service) EnrichEach(ctx context.Context, tokens []string, fn func(i int, rec domain.EnrichedToken)) domain.EnrichmentResult {
	res := domain.NewEnrichmentResult(tokens)
	if len(tokens) == 0 {
		return res
	}

	start := time.Now()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for i, tok := range tokens {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// g.Go may have waited for a free slot past a cancellation.
			if ctx.Err() != nil {
				return nil
			}
			rec := s.enrichOne(ctx, tok)
			res[i] = rec
			if fn != nil {
				mu.Lock()
				fn(i, rec)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	found := 0
	for _, rec := range res {
		if !rec.IsEmpty() {
			found++
		}
	}
	s.log.InfoContext(ctx, "enrichment finished",
		slog.Int("tokens", len(tokens)),
		slog.Int("found", found),
		slog.Duration("elapsed", time.Since(start)),
	)

	return res
}

// enrichOne never panics; any failure yields the bare record.
func (s *Service) enrichOne(ctx context.Context, token string) (rec domain.EnrichedToken) {
	rec = domain.EnrichedToken{Name: token}

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "token enrichment panicked",
				slog.String("token", token),
				slog.Any("panic", r),
			)
			rec = domain.EnrichedToken{Name: token}
		}
	}()

	fetchCtx := ctx
	if s.tokenTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.tokenTimeout)
		defer cancel()
	}

	markup, err := s.lex.Fetch(fetchCtx, token)
	if err != nil {
		s.logFailure(ctx, "lookup failed", token, err)
		return rec
	}

	html := markup.HTML
	if markup.Escaped {
		html = extract.Sanitize(html)
	}

	fields, err := s.ext.Extract(html)
	if err != nil {
		s.logFailure(ctx, "extraction failed", token, fmt.Errorf("lookup: %w", err))
		return rec
	}

	rec.Romanization = fields.Romanization
	rec.IPA = fields.IPA
	rec.Meaning = fields.Meaning
	return rec
}

func (s *Service) logFailure(ctx context.Context, msg, token string, err error) {
	level := slog.LevelWarn
	if ctx.Err() != nil {
		level = slog.LevelDebug
	}
	s.log.Log(ctx, level, msg, slog.String("token", token), slog.String("error", err.Error()))
}
