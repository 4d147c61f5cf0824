package ws

import "github.com/heartmarshall/khmer-lookup/internal/domain"

// Message types sent by the server.
const (
	typeTokens = "tokens"
	typeEntry  = "entry"
	typeDone   = "done"
	typeError  = "error"
)

// request is the only client message: one sentence to look up.
type request struct {
	Text string `json:"text"`
}

type tokensMessage struct {
	Type   string   `json:"type"`
	Tokens []string `json:"tokens"`
}

type entryMessage struct {
	Type  string               `json:"type"`
	Index int                  `json:"index"`
	Entry domain.EnrichedToken `json:"entry"`
}

type doneMessage struct {
	Type    string                  `json:"type"`
	Results domain.EnrichmentResult `json:"results"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}
