package dto

import "github.com/devanshmehta/scholarmatch/internal/model"

// MatchResult is ephemeral; it is never persisted. Similarity is the
// cosine similarity kept above the match threshold, MatchReason the
// ordered human-readable explanations for the eligible dimensions.
type MatchResult struct {
	Scholarship model.Scholarship `json:"scholarship"`
	Similarity  float64           `json:"similarity"`
	MatchReason []string          `json:"match_reason"`
}
