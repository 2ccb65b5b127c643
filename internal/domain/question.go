package domain

// Question is a single clarifying question shown to a visitor, with the
// answer options the engine generated from the site content.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
}

// Classification is the terminal result of a dialogue: the visitor's
// inferred interests and the content sections most relevant to them.
type Classification struct {
	Interests        []string `json:"interests"`
	RelevantSections []string `json:"relevant_sections"`
	PrimaryInterest  string   `json:"primary_interest,omitempty"`
}

// ContentAnalysis is the engine's summary of a scraped page, used as
// context for question generation and classification.
type ContentAnalysis struct {
	Topics   []string `json:"topics"`
	Audience []string `json:"audience"`
	Sections []string `json:"sections"`
}

// PageSnapshot is a page's analysis together with the HTTP validators
// needed to revalidate the scraped copy.
type PageSnapshot struct {
	Analysis     ContentAnalysis `json:"analysis"`
	ETag         string          `json:"etag,omitempty"`
	LastModified string          `json:"last_modified,omitempty"`
}
