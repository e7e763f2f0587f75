package models

// Article is a normalized market news article returned by the aggregator.
// Articles are built per request and never persisted.
type Article struct {
	ID             string `json:"id"`
	Headline       string `json:"headline"`
	URL            string `json:"url"`
	Datetime       int64  `json:"datetime"`
	Summary        string `json:"summary"`
	Source         string `json:"source"`
	Image          string `json:"image"`
	RelatedSymbol  string `json:"related_symbol,omitempty"`
	IsSymbolScoped bool   `json:"is_symbol_scoped"`
	RoundIndex     *int   `json:"round_index,omitempty"`
}
