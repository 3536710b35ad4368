// Package search answers queries against the FAQ store through a chain of
// strategies that degrade gracefully: semantic similarity first, keyword
// matching when embeddings are unavailable, and finally the full catalog so
// the caller always gets something usable back.
package search

// Strategy identifies which stage of the chain produced a result set.
type Strategy string

const (
	StrategySemantic Strategy = "semantic"
	StrategyKeyword  Strategy = "keyword"
	StrategyCatalog  Strategy = "catalog"
)

// Result is one answered entry. Score is the cosine similarity and only
// meaningful when Strategy is semantic; the other stages report 0.
type Result struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Score    float64  `json:"score,omitempty"`
	Strategy Strategy `json:"strategy"`
}
