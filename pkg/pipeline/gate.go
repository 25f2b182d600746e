package pipeline

import "github.com/umputun/dcwatch/pkg/domain"

// ShouldPersist reports whether a classified item passes the relevance gate.
// Missing classification never passes.
func ShouldPersist(c *domain.Classification, threshold int) bool {
	return c != nil && c.RelevanceScore >= threshold
}
