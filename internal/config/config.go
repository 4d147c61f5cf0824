package config

import (
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Lexicon   LexiconConfig   `yaml:"lexicon"`
	Lookup    LookupConfig    `yaml:"lookup"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Extract   ExtractConfig   `yaml:"extract"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// Origins splits AllowedOrigins into a trimmed list.
func (c CORSConfig) Origins() []string { return splitList(c.AllowedOrigins) }

// Methods splits AllowedMethods into a trimmed list.
func (c CORSConfig) Methods() []string { return splitList(c.AllowedMethods) }

// Headers splits AllowedHeaders into a trimmed list.
func (c CORSConfig) Headers() []string { return splitList(c.AllowedHeaders) }

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-IP rate limits. A zero limit disables limiting.
type RateLimitConfig struct {
	LookupPerMinute int           `yaml:"lookup_per_minute" env:"RATE_LIMIT_LOOKUP_PER_MINUTE" env-default:"60"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATE_LIMIT_CLEANUP_INTERVAL"  env-default:"1m"`
}

// LexiconConfig holds the dictionary lookup source settings.
type LexiconConfig struct {
	BaseURL      string        `yaml:"base_url"       env:"LEXICON_BASE_URL"       env-default:"https://en.wiktionary.org/w/api.php"`
	Timeout      time.Duration `yaml:"timeout"        env:"LEXICON_TIMEOUT"        env-default:"10s"`
	UserAgent    string        `yaml:"user_agent"     env:"LEXICON_USER_AGENT"     env-default:"khmer-lookup/1.0 (https://github.com/heartmarshall/khmer-lookup)"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"LEXICON_MAX_BODY_BYTES" env-default:"5242880"`
}

// LookupConfig holds enrichment pipeline settings.
type LookupConfig struct {
	Concurrency      int           `yaml:"concurrency"        env:"LOOKUP_CONCURRENCY"        env-default:"4"`
	TokenTimeout     time.Duration `yaml:"token_timeout"      env:"LOOKUP_TOKEN_TIMEOUT"      env-default:"15s"`
	MaxSentenceRunes int           `yaml:"max_sentence_runes" env:"LOOKUP_MAX_SENTENCE_RUNES" env-default:"1000"`
}

// SegmenterConfig holds word segmentation settings.
type SegmenterConfig struct {
	// DictionaryPath is an optional word list merged into the embedded one.
	DictionaryPath string `yaml:"dictionary_path" env:"SEGMENTER_DICTIONARY_PATH"`
}

// ExtractConfig holds the CSS selectors used to pull fields out of an entry page.
// An empty field selector disables that field.
type ExtractConfig struct {
	Heading      string `yaml:"heading"      env:"EXTRACT_HEADING"      env-default:"h2"`
	Marker       string `yaml:"marker"       env:"EXTRACT_MARKER"       env-default:"Khmer"`
	Romanization string `yaml:"romanization" env:"EXTRACT_ROMANIZATION" env-default:"span.IPA[lang='km'][style='font-size:95%']"`
	IPA          string `yaml:"ipa"          env:"EXTRACT_IPA"          env-default:"span.IPA[lang='km'][style='font-size:110%']"`
	Meaning      string `yaml:"meaning"      env:"EXTRACT_MEANING"      env-default:"ol"`
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
