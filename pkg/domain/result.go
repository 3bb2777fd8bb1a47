package domain

// CellContent is the provider-authored text for one cell.
type CellContent struct {
	PromptText   string `json:"promptText" mapstructure:"promptText"`
	RevealedText string `json:"revealedText" mapstructure:"revealedText"`
	Bonus        bool   `json:"bonus,omitempty" mapstructure:"bonus"`
}

// SectionContent is the provider-authored content for one section.
type SectionContent struct {
	Title string        `json:"title" mapstructure:"title"`
	Cells []CellContent `json:"cells" mapstructure:"cells"`
}

// ProviderResult is a decoded provider response. Which field is populated
// depends on the scope: Sections for board/refresh, Cells for section,
// Cell for cell.
type ProviderResult struct {
	Sections []SectionContent `json:"sections,omitempty"`
	Cells    []CellContent    `json:"cells,omitempty"`
	Cell     *CellContent     `json:"cell,omitempty"`
}

// PromptContext is what the board tells the provider about itself.
type PromptContext struct {
	Topic           string        `json:"topic,omitempty"`
	SectionCount    int           `json:"section_count"`
	CellsPerSection int           `json:"cells_per_section"`
	SectionTitles   []string      `json:"section_titles,omitempty"`
	Existing        []CellContent `json:"existing,omitempty"` // current text within the scope
}

// GenerationRequest is one attempt sent to the content provider.
// Attempt is zero-based; providers may tighten output framing on retries.
type GenerationRequest struct {
	Scope   Scope         `json:"scope"`
	Prompt  PromptContext `json:"prompt"`
	Attempt int           `json:"attempt"`
}
