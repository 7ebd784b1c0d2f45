// internal/workers/freight/match-carriers/models.go
package matchcarriers

import "carrier-matching/internal/matching"

type Input struct {
	LoadID  int64            `json:"loadId"`
	Options matching.Options `json:"options"`
}

type Output struct {
	MatchRunID  string                   `json:"matchRunId"`
	Cached      bool                     `json:"cached"`
	MatchResult *matching.MatchResultSet `json:"matchResult"`
}
