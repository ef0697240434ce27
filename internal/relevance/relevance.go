// Package relevance scores how well an item title matches a query.
//
// Scores are integers from 0 to 100. Exact, prefix and substring matches
// rank above partial word overlap; country and domain keyword matches add
// a bonus on top.
package relevance

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tier scores.
const (
	ScoreExact     = 100
	ScorePrefix    = 80
	ScoreSubstring = 70
	ScorePrimary   = 50
	ScorePartial   = 40

	BonusCountry = 15
	BonusKeyword = 10

	MaxScore = 100

	// minWordLen is the shortest primary-name word that earns partial credit.
	minWordLen = 4
)

// fillerWords are dropped from primary names.
var fillerWords = map[string]bool{
	"of": true, "the": true, "at": true, "in": true, "on": true,
}

var leadingArticles = []string{"the ", "a ", "an "}

// Normalize decomposes s, strips diacritics, lowercases it and collapses
// whitespace. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// PrimaryName extracts the core name from a free-text query such as a
// site title with a subtitle: "The Great Pyramid of Giza (Khufu)" becomes
// "Great Pyramid Giza". Returns the trimmed input if nothing survives.
func PrimaryName(query string) string {
	name := query
	if i := strings.Index(name, " - "); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexAny(name, "(,"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)

	lower := strings.ToLower(name)
	for _, article := range leadingArticles {
		if strings.HasPrefix(lower, article) {
			name = name[len(article):]
			break
		}
	}

	words := strings.Fields(name)
	kept := words[:0]
	for _, w := range words {
		if !fillerWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}

	if len(kept) == 0 {
		return strings.TrimSpace(query)
	}
	return strings.Join(kept, " ")
}

// Options tunes Score.
type Options struct {
	// PrimaryName overrides PrimaryName(query) when set.
	PrimaryName string

	// Country adds BonusCountry when it appears in the title.
	Country string

	// BoostKeywords add BonusKeyword once when any appears in the title.
	BoostKeywords []string
}

// Score rates title against query on a 0 to 100 scale.
func Score(title, query string, opts Options) int {
	item := Normalize(title)
	q := Normalize(query)

	primary := opts.PrimaryName
	if primary == "" {
		primary = PrimaryName(query)
	}
	p := Normalize(primary)

	score := 0
	switch {
	case q == "" || item == "":
		score = 0
	case item == q:
		score = ScoreExact
	case strings.HasPrefix(item, q):
		score = ScorePrefix
	case strings.Contains(item, q):
		score = ScoreSubstring
	case p != "" && strings.Contains(item, p):
		score = ScorePrimary
	default:
		score = partialCredit(item, p)
	}

	if country := Normalize(opts.Country); country != "" && strings.Contains(item, country) {
		score += BonusCountry
	}

	for _, kw := range opts.BoostKeywords {
		if kw = Normalize(kw); kw != "" && strings.Contains(item, kw) {
			score += BonusKeyword
			break
		}
	}

	return min(score, MaxScore)
}

// partialCredit awards up to ScorePartial for the fraction of significant
// primary-name words present in the item.
func partialCredit(item, primary string) int {
	var total, found int
	for _, w := range strings.Fields(primary) {
		if utf8.RuneCountInString(w) < minWordLen {
			continue
		}
		total++
		if strings.Contains(item, w) {
			found++
		}
	}
	if total == 0 {
		return 0
	}
	return found * ScorePartial / total
}

// FromFraction converts a 0.0–1.0 upstream relevance into the 0–100 scale.
func FromFraction(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(max(0, min(1, f)) * MaxScore))
}
