package lookup

import (
	"context"
	"sync"

	"github.com/heartmarshall/khmer-lookup/internal/domain"
	"github.com/heartmarshall/khmer-lookup/internal/extract"
)

var (
	_ tokenSegmenter = &segmenterMock{}
	_ lexicon        = &lexiconMock{}
	_ fieldExtractor = &extractorMock{}
)

type segmenterMock struct {
	SegmentFunc func(sentence string) []string

	mu    sync.Mutex
	calls []string
}

func (m *segmenterMock) Segment(sentence string) []string {
	if m.SegmentFunc == nil {
		panic("segmenterMock.SegmentFunc: method is nil but tokenSegmenter.Segment was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, sentence)
	m.mu.Unlock()
	return m.SegmentFunc(sentence)
}

func (m *segmenterMock) SegmentCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type lexiconMock struct {
	FetchFunc func(ctx context.Context, word string) (domain.RawMarkup, error)

	mu    sync.Mutex
	calls []string
}

func (m *lexiconMock) Fetch(ctx context.Context, word string) (domain.RawMarkup, error) {
	if m.FetchFunc == nil {
		panic("lexiconMock.FetchFunc: method is nil but lexicon.Fetch was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, word)
	m.mu.Unlock()
	return m.FetchFunc(ctx, word)
}

func (m *lexiconMock) FetchCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

type extractorMock struct {
	ExtractFunc func(markup string) (extract.Fields, error)

	mu    sync.Mutex
	calls []string
}

func (m *extractorMock) Extract(markup string) (extract.Fields, error) {
	if m.ExtractFunc == nil {
		panic("extractorMock.ExtractFunc: method is nil but fieldExtractor.Extract was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, markup)
	m.mu.Unlock()
	return m.ExtractFunc(markup)
}

func (m *extractorMock) ExtractCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
