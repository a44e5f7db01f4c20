package schema

import (
	"fmt"
	"math"
	"strings"
)

// schemaFields maps every schema label to the header words that usually
// accompany it. Scoring is a plain word-overlap ratio against these sets.
var schemaFields = map[string][]string{
	"tenants": {
		"name", "tenant", "email", "phone", "building", "unit", "move", "in",
		"out", "date", "rent", "monthly", "status", "arrears",
	},
	"buildings": {
		"name", "building", "address", "city", "type", "total", "units",
		"floors", "year", "built", "status",
	},
	"expenses": {
		"category", "description", "amount", "expense", "date", "vendor",
		"payment", "method", "status",
	},
	"units": {
		"unit", "number", "bedrooms", "bathrooms", "size", "sqft", "rent",
		"amount", "status",
	},
	"payments": {
		"amount", "payment", "type", "method", "date", "status", "reference",
		"number", "description",
	},
}

// Hint is a deterministic guess at which schema a header set resembles.
type Hint struct {
	Label string
	Score float64 // 0-100
}

// BestHint scores the headers against every known schema and returns the
// strongest candidate. Score 0 means nothing matched at all.
func BestHint(headers []string) Hint {
	words := headerWords(headers)

	best := Hint{Label: "unknown"}
	var scores []Hint
	for label, fields := range schemaFields {
		score := overlapScore(words, fields)
		scores = append(scores, Hint{Label: label, Score: score})
	}

	// ambiguity penalty when a second schema scores nearly as high
	var runnerUp float64
	for _, s := range scores {
		if s.Score > best.Score {
			runnerUp = best.Score
			best = s
		} else if s.Score > runnerUp {
			runnerUp = s.Score
		}
	}
	if best.Score > 0 && runnerUp >= best.Score*0.9 {
		best.Score *= 0.8
	}

	if best.Score == 0 {
		best.Label = "unknown"
	}
	return best
}

// Suggestion renders the hint as operator-facing text, or "" when the hint
// is too weak to be worth showing.
func (h Hint) Suggestion() string {
	if h.Label == "unknown" || h.Score < 30 {
		return ""
	}
	return fmt.Sprintf("Column headers most resemble %q (similarity %.0f%%). Re-upload with that type selected if the automatic detection looks wrong.", h.Label, h.Score)
}

func overlapScore(headerWords []string, fields []string) float64 {
	matches := 0
	for _, w := range headerWords {
		for _, f := range fields {
			if w == f {
				matches++
				break
			}
		}
	}
	return float64(matches) / math.Max(float64(len(headerWords)), 1) * 100
}

func headerWords(headers []string) []string {
	var words []string
	for _, h := range headers {
		n := strings.ToLower(h)
		n = strings.ReplaceAll(n, "_", " ")
		n = strings.ReplaceAll(n, "-", " ")
		n = strings.ReplaceAll(n, ".", " ")
		words = append(words, strings.Fields(n)...)
	}
	return words
}
