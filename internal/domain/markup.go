package domain

// RawMarkup is an entry page as returned by a lexicon source.
type RawMarkup struct {
	HTML string
	// Escaped reports that HTML still carries the source's transport
	// escaping (entity-encoded quotes and angle brackets, numeric references,
	// literal `\n`) and must be sanitized before parsing. Markup taken from a
	// decoded JSON envelope is already plain HTML.
	Escaped bool
}
