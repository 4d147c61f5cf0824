package wiktionary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/heartmarshall/khmer-lookup/internal/config"
	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

const (
	defaultBaseURL      = "https://en.wiktionary.org/w/api.php"
	defaultTimeout      = 10 * time.Second
	defaultUserAgent    = "khmer-lookup/1.0 (https://github.com/heartmarshall/khmer-lookup)"
	defaultMaxBodyBytes = 5 << 20
)

// Provider fetches rendered entry pages from the Wiktionary parse API.
type Provider struct {
	baseURL      string
	userAgent    string
	maxBodyBytes int64
	httpClient   *http.Client
	log          *slog.Logger
}

// NewProvider creates a Provider from lexicon settings. Zero values fall back to defaults.
func NewProvider(cfg config.LexiconConfig, logger *slog.Logger) *Provider {
	p := &Provider{
		baseURL:      cfg.BaseURL,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		log:          logger.With("adapter", "wiktionary"),
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	if p.userAgent == "" {
		p.userAgent = defaultUserAgent
	}
	if p.maxBodyBytes <= 0 {
		p.maxBodyBytes = defaultMaxBodyBytes
	}
	if p.httpClient.Timeout <= 0 {
		p.httpClient.Timeout = defaultTimeout
	}
	return p
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, logger *slog.Logger) *Provider {
	return NewProvider(config.LexiconConfig{BaseURL: baseURL}, logger)
}

// Fetch returns the rendered HTML of the entry page titled word. HTML taken
// from the JSON envelope is returned unescaped; any other body is returned
// verbatim and marked Escaped.
// Any error means the lookup failed; it always wraps domain.ErrLookupFailed,
// and additionally domain.ErrNotFound when the page does not exist.
// A single attempt is made.
func (p *Provider) Fetch(ctx context.Context, word string) (domain.RawMarkup, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("prop", "text")
	params.Set("formatversion", "2")
	params.Set("format", "json")
	params.Set("origin", "*")
	params.Set("page", word)

	p.log.DebugContext(ctx, "wiktionary request", slog.String("word", word))

	start := time.Now()
	body, status, err := p.get(ctx, params)
	if err != nil {
		p.log.WarnContext(ctx, "wiktionary request failed", slog.String("word", word), slog.String("error", err.Error()))
		return domain.RawMarkup{}, fmt.Errorf("wiktionary: %w: %w", domain.ErrLookupFailed, err)
	}

	if status < 200 || status > 299 {
		if status == http.StatusNotFound {
			return domain.RawMarkup{}, fmt.Errorf("wiktionary: %w: %w: status %d", domain.ErrLookupFailed, domain.ErrNotFound, status)
		}
		return domain.RawMarkup{}, fmt.Errorf("wiktionary: %w: unexpected status %d", domain.ErrLookupFailed, status)
	}

	markup, err := decodeMarkup(body)
	if err != nil {
		return domain.RawMarkup{}, fmt.Errorf("wiktionary: page %q: %w", word, err)
	}

	p.log.DebugContext(ctx, "wiktionary response",
		slog.String("word", word),
		slog.Int("status", status),
		slog.Int("bytes", len(markup.HTML)),
		slog.Bool("escaped", markup.Escaped),
		slog.Duration("latency", time.Since(start)),
	)

	return markup, nil
}

// Ping checks that the API answers a cheap siteinfo query.
func (p *Provider) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("format", "json")
	params.Set("origin", "*")

	_, status, err := p.get(ctx, params)
	if err != nil {
		return fmt.Errorf("wiktionary: ping: %w", err)
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("wiktionary: ping: unexpected status %d", status)
	}
	return nil
}

// get performs one GET and reads at most maxBodyBytes of the response.
func (p *Provider) get(ctx context.Context, params url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json, text/html;q=0.9")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodyBytes+1))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > p.maxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("body exceeds %d bytes", p.maxBodyBytes)
	}

	return body, resp.StatusCode, nil
}

// decodeMarkup extracts page HTML from a response body. A JSON object body is
// treated as a MediaWiki envelope; anything else is returned verbatim.
func decodeMarkup(body []byte) (domain.RawMarkup, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return domain.RawMarkup{}, fmt.Errorf("%w: empty body", domain.ErrLookupFailed)
	}
	if !utf8.Valid(trimmed) {
		return domain.RawMarkup{}, fmt.Errorf("%w: body is not valid UTF-8", domain.ErrLookupFailed)
	}

	if trimmed[0] != '{' {
		return domain.RawMarkup{HTML: string(body), Escaped: true}, nil
	}

	var env apiResponse
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return domain.RawMarkup{}, fmt.Errorf("%w: decode json: %w", domain.ErrLookupFailed, err)
	}

	if env.Error != nil {
		if env.Error.Code == codeMissingTitle {
			return domain.RawMarkup{}, fmt.Errorf("%w: %w: %s", domain.ErrLookupFailed, domain.ErrNotFound, env.Error.Info)
		}
		return domain.RawMarkup{}, fmt.Errorf("%w: api error %s: %s", domain.ErrLookupFailed, env.Error.Code, env.Error.Info)
	}

	if env.Parse == nil || env.Parse.Text == "" {
		return domain.RawMarkup{}, fmt.Errorf("%w: envelope has no parse text", domain.ErrLookupFailed)
	}

	return domain.RawMarkup{HTML: env.Parse.Text}, nil
}
