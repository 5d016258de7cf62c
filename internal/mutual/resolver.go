package mutual

import (
	"strings"

	"chatcheck/internal/registry"
	"chatcheck/pkg/logging"
)

// Pair is a derived, read-only relationship between two identities: the
// Origin's conversational artifacts should be visible to the Dependent.
type Pair struct {
	Origin    registry.ApplicationIdentity
	Dependent registry.ApplicationIdentity
}

// normalizeID canonicalizes an identity id for comparison. Sources have
// historically carried ids both as strings and as numbers, so leading zeros
// on purely numeric ids are stripped to make "007" and "7" equal.
func normalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return id
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
	}
	trimmed := strings.TrimLeft(id, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// FindPairs returns every (origin, dependent) pair in the set, in the
// dependents' source order. A dependent must have mutualization enabled and
// a non-empty link; the first identity matching the link in stable scan
// order becomes the pair's origin. An identity never pairs with itself.
//
// An empty result means the loaded test data carries no mutualization links;
// callers should skip, not fail.
func FindPairs(identities []registry.ApplicationIdentity) []Pair {
	var pairs []Pair

	for _, dependent := range identities {
		if !dependent.Mutualize || dependent.MutualizeWith == "" {
			continue
		}

		want := normalizeID(dependent.MutualizeWith)
		for _, origin := range identities {
			if origin.ID == dependent.ID {
				continue
			}
			if normalizeID(origin.ID) == want {
				pairs = append(pairs, Pair{Origin: origin, Dependent: dependent})
				break
			}
		}
	}

	if len(pairs) == 0 {
		logging.Debug("MutualizationResolver", "no mutualization pairs in identity set of %d", len(identities))
	}
	return pairs
}
