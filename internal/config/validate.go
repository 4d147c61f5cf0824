package config

import (
	"fmt"
	"net/url"
	"strings"
)

const maxConcurrency = 64

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.RateLimit.LookupPerMinute < 0 {
		return fmt.Errorf("rate_limit.lookup_per_minute must be >= 0 (got %d)", c.RateLimit.LookupPerMinute)
	}

	if err := c.Lexicon.validate(); err != nil {
		return fmt.Errorf("lexicon: %w", err)
	}
	if err := c.Lookup.validate(); err != nil {
		return fmt.Errorf("lookup: %w", err)
	}
	if err := c.Extract.validate(); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	return nil
}

func (l LexiconConfig) validate() error {
	u, err := url.Parse(l.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL (got %q)", l.BaseURL)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", l.Timeout)
	}
	if l.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be > 0 (got %d)", l.MaxBodyBytes)
	}
	return nil
}

func (l LookupConfig) validate() error {
	if l.Concurrency < 1 || l.Concurrency > maxConcurrency {
		return fmt.Errorf("concurrency must be in 1..%d (got %d)", maxConcurrency, l.Concurrency)
	}
	if l.TokenTimeout <= 0 {
		return fmt.Errorf("token_timeout must be > 0 (got %v)", l.TokenTimeout)
	}
	if l.MaxSentenceRunes <= 0 {
		return fmt.Errorf("max_sentence_runes must be > 0 (got %d)", l.MaxSentenceRunes)
	}
	return nil
}

func (e ExtractConfig) validate() error {
	if e.Romanization == "" && e.IPA == "" && e.Meaning == "" {
		return fmt.Errorf("at least one of romanization, ipa, meaning selectors must be set")
	}
	if e.Heading != "" && e.Marker == "" {
		return fmt.Errorf("marker is required when heading is set")
	}
	return nil
}
