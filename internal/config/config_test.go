package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// chdirTemp switches the working directory to a fresh temp dir for the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	require.NoError(t, os.Chdir(dir))
	return dir
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: "5s"
  write_timeout: "15s"
  idle_timeout: "30s"
  shutdown_timeout: "5s"

log:
  level: "debug"
  format: "text"

rate_limit:
  lookup_per_minute: 30

lexicon:
  base_url: "http://localhost:9999/w/api.php"
  timeout: "3s"
  user_agent: "test-agent/0.1"
  max_body_bytes: 1024

lookup:
  concurrency: 8
  token_timeout: "2s"
  max_sentence_runes: 200

segmenter:
  dictionary_path: "/tmp/words.txt"

extract:
  meaning: "div.meaning"
`

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Log:     LogConfig{Level: "info", Format: "json"},
		Lexicon: LexiconConfig{BaseURL: "https://en.wiktionary.org/w/api.php", Timeout: time.Second, MaxBodyBytes: 1 << 20},
		Lookup:  LookupConfig{Concurrency: 4, TokenTimeout: time.Second, MaxSentenceRunes: 1000},
		Extract: ExtractConfig{Heading: "h2", Marker: "Khmer", Meaning: "ol"},
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	chdirTemp(t)
	path := writeFile(t, t.TempDir(), "config.yaml", validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)

	assert.Equal(t, 30, cfg.RateLimit.LookupPerMinute)

	assert.Equal(t, "http://localhost:9999/w/api.php", cfg.Lexicon.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Lexicon.Timeout)
	assert.Equal(t, "test-agent/0.1", cfg.Lexicon.UserAgent)
	assert.Equal(t, int64(1024), cfg.Lexicon.MaxBodyBytes)

	assert.Equal(t, 8, cfg.Lookup.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Lookup.TokenTimeout)
	assert.Equal(t, 200, cfg.Lookup.MaxSentenceRunes)

	assert.Equal(t, "/tmp/words.txt", cfg.Segmenter.DictionaryPath)

	// Unset selectors keep their defaults.
	assert.Equal(t, "div.meaning", cfg.Extract.Meaning)
	assert.Equal(t, "h2", cfg.Extract.Heading)
	assert.Equal(t, "span.IPA[lang='km'][style='font-size:110%']", cfg.Extract.IPA)
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	chdirTemp(t)
	path := writeFile(t, t.TempDir(), "config.yaml", validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("LOOKUP_CONCURRENCY", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Lookup.Concurrency)
}

func TestLoad_NoFile_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://en.wiktionary.org/w/api.php", cfg.Lexicon.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Lexicon.Timeout)
	assert.Equal(t, int64(5242880), cfg.Lexicon.MaxBodyBytes)
	assert.Equal(t, 4, cfg.Lookup.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.Lookup.TokenTimeout)
	assert.Equal(t, 1000, cfg.Lookup.MaxSentenceRunes)
	assert.Equal(t, 60, cfg.RateLimit.LookupPerMinute)
	assert.Empty(t, cfg.Segmenter.DictionaryPath)

	assert.Equal(t, "h2", cfg.Extract.Heading)
	assert.Equal(t, "Khmer", cfg.Extract.Marker)
	assert.Equal(t, "span.IPA[lang='km'][style='font-size:95%']", cfg.Extract.Romanization)
	assert.Equal(t, "span.IPA[lang='km'][style='font-size:110%']", cfg.Extract.IPA)
	assert.Equal(t, "ol", cfg.Extract.Meaning)
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	dir := chdirTemp(t)
	writeFile(t, dir, ".env", "LEXICON_USER_AGENT=dotenv-agent/2.0\n")
	t.Cleanup(func() { _ = os.Unsetenv("LEXICON_USER_AGENT") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dotenv-agent/2.0", cfg.Lexicon.UserAgent)
}

func TestLoad_DotEnvDoesNotOverrideEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LOOKUP_MAX_SENTENCE_RUNES", "50")
	dir := chdirTemp(t)
	writeFile(t, dir, ".env", "LOOKUP_MAX_SENTENCE_RUNES=99\n")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Lookup.MaxSentenceRunes)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFrom_IgnoresConfigPathEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	path := writeFile(t, t.TempDir(), "lookup.yaml", validYAML)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Lookup.Concurrency)
	assert.Equal(t, "div.meaning", cfg.Extract.Meaning)
}

func TestLoadFrom_EmptyPathUsesLocalFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_PATH", "")
	writeFile(t, dir, "config.yaml", validYAML)

	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	chdirTemp(t)
	path := writeFile(t, t.TempDir(), "config.yaml", `{{{invalid yaml`)
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidValueRejected(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LOOKUP_CONCURRENCY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookup: concurrency")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "log format case insensitive", mutate: func(c *Config) { c.Log.Format = "TEXT" }},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit.LookupPerMinute = -1 }, wantErr: "rate_limit"},
		{name: "relative base url", mutate: func(c *Config) { c.Lexicon.BaseURL = "/w/api.php" }, wantErr: "lexicon: base_url"},
		{name: "ftp base url", mutate: func(c *Config) { c.Lexicon.BaseURL = "ftp://example.com/api" }, wantErr: "lexicon: base_url"},
		{name: "zero lexicon timeout", mutate: func(c *Config) { c.Lexicon.Timeout = 0 }, wantErr: "lexicon: timeout"},
		{name: "zero body limit", mutate: func(c *Config) { c.Lexicon.MaxBodyBytes = 0 }, wantErr: "lexicon: max_body_bytes"},
		{name: "concurrency zero", mutate: func(c *Config) { c.Lookup.Concurrency = 0 }, wantErr: "lookup: concurrency"},
		{name: "concurrency too high", mutate: func(c *Config) { c.Lookup.Concurrency = 65 }, wantErr: "lookup: concurrency"},
		{name: "concurrency one", mutate: func(c *Config) { c.Lookup.Concurrency = 1 }},
		{name: "zero token timeout", mutate: func(c *Config) { c.Lookup.TokenTimeout = 0 }, wantErr: "lookup: token_timeout"},
		{name: "zero sentence runes", mutate: func(c *Config) { c.Lookup.MaxSentenceRunes = 0 }, wantErr: "lookup: max_sentence_runes"},
		{
			name: "no field selectors",
			mutate: func(c *Config) {
				c.Extract.Romanization, c.Extract.IPA, c.Extract.Meaning = "", "", ""
			},
			wantErr: "extract",
		},
		{name: "heading without marker", mutate: func(c *Config) { c.Extract.Marker = "" }, wantErr: "extract: marker"},
		{name: "no heading no marker", mutate: func(c *Config) { c.Extract.Heading, c.Extract.Marker = "", "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCORSConfig_Lists(t *testing.T) {
	t.Parallel()

	c := CORSConfig{
		AllowedOrigins: " https://a.example , https://b.example,",
		AllowedMethods: "GET,POST",
		AllowedHeaders: "",
	}

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Origins())
	assert.Equal(t, []string{"GET", "POST"}, c.Methods())
	assert.Nil(t, c.Headers())
}
