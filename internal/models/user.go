package models

import "time"

// User is a registered account together with the investment profile
// collected at sign-up.
type User struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Country           string    `json:"country,omitempty"`
	InvestmentGoals   string    `json:"investment_goals,omitempty"`
	RiskTolerance     string    `json:"risk_tolerance,omitempty"`
	PreferredIndustry string    `json:"preferred_industry,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// WatchlistItem is a ticker symbol a user follows.
type WatchlistItem struct {
	ID      int64     `json:"id"`
	UserID  int64     `json:"user_id"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"added_at"`
}

// StockMatch is a single symbol lookup result.
type StockMatch struct {
	Symbol        string `json:"symbol"`
	DisplaySymbol string `json:"display_symbol"`
	Description   string `json:"description"`
	Type          string `json:"type"`
}
