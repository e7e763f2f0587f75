package ai

// ProviderConfig holds the configuration needed to create an AI provider.
type ProviderConfig struct {
	Provider string // "anthropic" | "openai"
	APIKey   string
	Model    string
}

// Profile is the investment profile a user fills in at sign-up.
type Profile struct {
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investment_goals"`
	RiskTolerance     string `json:"risk_tolerance"`
	PreferredIndustry string `json:"preferred_industry"`
}

// NewsEntry is a simplified article representation for AI prompts.
type NewsEntry struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	Symbol   string `json:"symbol,omitempty"`
	Summary  string `json:"summary"`
}
