package wiktionary

// apiResponse is the MediaWiki action=parse envelope with formatversion=2.
// Exactly one of Parse or Error is set.
type apiResponse struct {
	Parse *apiParse `json:"parse"`
	Error *apiError `json:"error"`
}

type apiParse struct {
	Title  string `json:"title"`
	PageID int64  `json:"pageid"`
	Text   string `json:"text"`
}

// apiError is returned with HTTP 200, e.g. code "missingtitle" for an absent page.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

const codeMissingTitle = "missingtitle"
