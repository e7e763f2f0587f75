package ai

import (
	"fmt"
	"strings"
)

const welcomeIntroSystemPrompt = `You write the opening paragraph of a welcome email for a stock market news service. Using the user's investment profile, write 2-3 warm, specific sentences that mention how the service can help with their goals, risk tolerance and preferred industry. Do not greet the user by name (the email already does), do not give financial advice, and return plain text without markdown headings.`

const summarizeNewsSystemPrompt = `You are a financial news editor. Given today's headlines, write a market overview of 3-4 sentences for a retail investor. Mention the companies or symbols that matter most and the overall tone of the news. Do not give financial advice. Do NOT include any prefix like "Summary:". Start directly with the first sentence.`

// WelcomeIntroPrompt builds the system and user prompts for the welcome
// email intro.
func WelcomeIntroPrompt(profile Profile) (systemPrompt string, userPrompt string) {
	var b strings.Builder
	b.WriteString("User Profile:\n")
	fmt.Fprintf(&b, "- Country: %s\n", orUnknown(profile.Country))
	fmt.Fprintf(&b, "- Investment goals: %s\n", orUnknown(profile.InvestmentGoals))
	fmt.Fprintf(&b, "- Risk tolerance: %s\n", orUnknown(profile.RiskTolerance))
	fmt.Fprintf(&b, "- Preferred industry: %s\n", orUnknown(profile.PreferredIndustry))

	return welcomeIntroSystemPrompt, b.String()
}

// SummarizeNewsPrompt builds the system and user prompts for the daily news
// overview.
func SummarizeNewsPrompt(articles []NewsEntry) (systemPrompt string, userPrompt string) {
	var b strings.Builder
	b.WriteString("Today's Headlines:\n")

	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s | Source: %s", i+1, a.Headline, a.Source)
		if a.Symbol != "" {
			fmt.Fprintf(&b, " | Symbol: %s", a.Symbol)
		}
		fmt.Fprintf(&b, " | Summary: %s\n", a.Summary)
	}

	return summarizeNewsSystemPrompt, b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not specified"
	}
	return s
}

// cleanText strips markdown code fences and surrounding whitespace that
// models sometimes wrap plain answers in.
func cleanText(s string) string {
	s = strings.TrimSpace(s)

	if after, found := strings.CutPrefix(s, "```"); found {
		// Drop an optional language tag on the opening fence line.
		if idx := strings.IndexByte(after, '\n'); idx >= 0 {
			after = after[idx+1:]
		}
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	return s
}
