package news

import (
	"errors"
	"iter"
	"strconv"

	"github.com/hoanghai1803/tickerwire/internal/models"
	"github.com/tidwall/gjson"
)

// RawArticle is one element of an upstream news array. Any field may be
// missing or carry the wrong JSON type, so fields are read through gjson
// and nothing is trusted until ValidateArticle accepts the article.
type RawArticle struct {
	value gjson.Result
}

// ParseRawArticle wraps a single JSON object as a RawArticle.
func ParseRawArticle(s string) RawArticle {
	return RawArticle{value: gjson.Parse(s)}
}

// ParseRawArticles splits an upstream response body into raw articles.
// A body that is valid JSON but not an array yields no articles.
func ParseRawArticles(body []byte) ([]RawArticle, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decoding news response: invalid JSON")
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, nil
	}

	items := result.Array()
	articles := make([]RawArticle, 0, len(items))
	for _, item := range items {
		articles = append(articles, RawArticle{value: item})
	}
	return articles, nil
}

// ValidateArticle reports whether a has a non-empty string headline and url
// and a numeric datetime whose whole-second value is positive.
func ValidateArticle(a RawArticle) bool {
	if !a.value.IsObject() {
		return false
	}
	headline := a.value.Get("headline")
	link := a.value.Get("url")
	datetime := a.value.Get("datetime")

	return headline.Type == gjson.String && headline.Str != "" &&
		link.Type == gjson.String && link.Str != "" &&
		datetime.Type == gjson.Number && datetime.Int() > 0
}

// FormatArticle maps a validated raw article to its normalized form. symbol
// and round are only recorded when symbolScoped is set.
func FormatArticle(a RawArticle, symbolScoped bool, symbol string, round int) models.Article {
	article := models.Article{
		ID:             a.id(),
		Headline:       a.str("headline"),
		URL:            a.str("url"),
		Datetime:       a.value.Get("datetime").Int(),
		Summary:        a.str("summary"),
		Source:         a.str("source"),
		Image:          a.str("image"),
		IsSymbolScoped: symbolScoped,
	}

	if symbolScoped {
		r := round
		article.RelatedSymbol = symbol
		article.RoundIndex = &r
	}

	return article
}

// dedupKey identifies an article by its id, url and headline.
func dedupKey(a RawArticle) string {
	return a.id() + "-" + a.str("url") + "-" + a.str("headline")
}

// validArticles yields the articles that pass ValidateArticle, in order.
func validArticles(raw []RawArticle) iter.Seq[RawArticle] {
	return func(yield func(RawArticle) bool) {
		for _, a := range raw {
			if !ValidateArticle(a) {
				continue
			}
			if !yield(a) {
				return
			}
		}
	}
}

// str returns the named field if it is a JSON string, else "".
func (a RawArticle) str(field string) string {
	v := a.value.Get(field)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// id renders the upstream id, which Finnhub sends as a number.
func (a RawArticle) id() string {
	v := a.value.Get("id")
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		if v.Num == float64(v.Int()) {
			return strconv.FormatInt(v.Int(), 10)
		}
		return v.Raw
	default:
		return ""
	}
}
