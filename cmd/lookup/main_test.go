package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
)

func fakeWiktionary(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page := r.URL.Query().Get("page")
		markup := fmt.Sprintf(`<h2>Khmer</h2><span class="IPA" lang="km" style="font-size:95%%">r-%[1]s</span><ol><li>m-%[1]s</li></ol>`, page)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"parse": map[string]any{"title": page, "text": markup}})
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("lexicon:\n  base_url: %q\nlookup:\n  concurrency: 1\n", baseURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Lookup(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	srv, _ := fakeWiktionary(t)
	cfgPath := writeConfig(t, srv.URL)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "សភាកម្ពុជា"}, &stdout, &stderr)
	require.NoError(t, err)

	var out struct {
		Tokens  []string                `json:"tokens"`
		Results domain.EnrichmentResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, []string{"សភា", "កម្ពុជា"}, out.Tokens)
	assert.Empty(t, os.Getenv("CONFIG_PATH"), "-config must not leak into the environment")
	assert.Equal(t, domain.EnrichmentResult{
		{Name: "សភា", Romanization: "r-សភា", Meaning: "m-សភា"},
		{Name: "កម្ពុជា", Romanization: "r-កម្ពុជា", Meaning: "m-កម្ពុជា"},
	}, out.Results)
}

func TestRun_TokensOnly(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	srv, calls := fakeWiktionary(t)
	cfgPath := writeConfig(t, srv.URL)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "-tokens-only", "សភាកម្ពុជា"}, &stdout, &stderr)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, []any{"សភា", "កម្ពុជា"}, out["tokens"])
	assert.NotContains(t, out, "results")
	assert.Zero(t, calls.Load())
}

func TestRun_UsageErrors(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "usage: lookup")

	stderr.Reset()
	err = run(context.Background(), []string{"-no-such-flag"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Empty(t, stdout.String())
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "dev")
}

func TestRun_InvalidSentence(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	srv, calls := fakeWiktionary(t)
	cfgPath := writeConfig(t, srv.URL)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "   "}, &stdout, &stderr)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, stdout.String())
	assert.Zero(t, calls.Load())
}

func TestRun_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "nope.yaml"), "សភា"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Empty(t, stdout.String())
}
