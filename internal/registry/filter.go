package registry

// filterCriteria collects the narrowing criteria for one Filter call.
// Criteria combine with logical AND; omitted criteria are no-ops.
type filterCriteria struct {
	role      string
	priority  PriorityClass
	country   string
	predicate func(ApplicationIdentity) bool
}

// FilterOption narrows a Filter result.
type FilterOption func(*filterCriteria)

// WithRole keeps identities granted the given role.
func WithRole(role string) FilterOption {
	return func(c *filterCriteria) { c.role = role }
}

// WithPriority keeps identities of the given priority class.
func WithPriority(priority PriorityClass) FilterOption {
	return func(c *filterCriteria) { c.priority = priority }
}

// WithCountry keeps identities tagged with the given country.
func WithCountry(country string) FilterOption {
	return func(c *filterCriteria) { c.country = country }
}

// WithPredicate keeps identities for which the predicate returns true.
func WithPredicate(predicate func(ApplicationIdentity) bool) FilterOption {
	return func(c *filterCriteria) { c.predicate = predicate }
}

// Filter returns the identities matching all supplied criteria, preserving
// source order. It never mutates the loaded set; the returned slice is a
// fresh allocation.
func (r *Registry) Filter(opts ...FilterOption) ([]ApplicationIdentity, error) {
	identities, err := r.Load()
	if err != nil {
		return nil, err
	}

	var criteria filterCriteria
	for _, opt := range opts {
		opt(&criteria)
	}

	matched := make([]ApplicationIdentity, 0, len(identities))
	for _, id := range identities {
		if criteria.role != "" && !id.HasRole(criteria.role) {
			continue
		}
		if criteria.priority != "" && id.Priority != criteria.priority {
			continue
		}
		if criteria.country != "" && id.Country != criteria.country {
			continue
		}
		if criteria.predicate != nil && !criteria.predicate(id) {
			continue
		}
		matched = append(matched, id)
	}
	return matched, nil
}
