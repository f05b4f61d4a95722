// Package privacy decides which captures must never be stored.
package privacy

import (
	"regexp"
	"sync/atomic"
)

// Policy reports whether a source application is excluded or text looks sensitive.
type Policy interface {
	IsExcluded(sourceID *string) bool
	ContainsSensitiveContent(text string) bool
}

// rule is a named sensitive-content pattern.
type rule struct {
	name string
	re   *regexp.Regexp
}

var sensitiveRules = []rule{
	// 3-2-4 digit groups (SSN-like)
	{name: "government_id", re: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)},
	{name: "payment_card", re: regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`)},
	{name: "password", re: regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`)},
	{name: "api_key", re: regexp.MustCompile(`(?i)api(?:[_-]?| )key\s*[:=]\s*\S+`)},
}

// DefaultPolicy excludes by exact bundle id and flags text with fixed pattern rules.
type DefaultPolicy struct {
	excluded map[string]bool
}

// NewDefaultPolicy creates a policy for the given excluded bundle ids.
func NewDefaultPolicy(excludedBundleIDs []string) *DefaultPolicy {
	excluded := make(map[string]bool, len(excludedBundleIDs))
	for _, id := range excludedBundleIDs {
		excluded[id] = true
	}
	return &DefaultPolicy{excluded: excluded}
}

// IsExcluded reports whether sourceID is in the excluded set. A nil source is never excluded.
func (p *DefaultPolicy) IsExcluded(sourceID *string) bool {
	if sourceID == nil {
		return false
	}
	return p.excluded[*sourceID]
}

// ContainsSensitiveContent reports whether any rule matches text.
func (p *DefaultPolicy) ContainsSensitiveContent(text string) bool {
	for _, r := range sensitiveRules {
		if r.re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchedRules returns the names of every rule that matches text.
func MatchedRules(text string) []string {
	var names []string
	for _, r := range sensitiveRules {
		if r.re.MatchString(text) {
			names = append(names, r.name)
		}
	}
	return names
}

// LivePolicy is a Policy whose excluded set can be replaced while captures
// are running.
type LivePolicy struct {
	current atomic.Pointer[DefaultPolicy]
}

// NewLivePolicy creates a LivePolicy for the given excluded bundle ids.
func NewLivePolicy(excludedBundleIDs []string) *LivePolicy {
	l := &LivePolicy{}
	l.Update(excludedBundleIDs)
	return l
}

// Update swaps in a new excluded set.
func (l *LivePolicy) Update(excludedBundleIDs []string) {
	l.current.Store(NewDefaultPolicy(excludedBundleIDs))
}

// IsExcluded implements Policy.
func (l *LivePolicy) IsExcluded(sourceID *string) bool {
	return l.current.Load().IsExcluded(sourceID)
}

// ContainsSensitiveContent implements Policy.
func (l *LivePolicy) ContainsSensitiveContent(text string) bool {
	return l.current.Load().ContainsSensitiveContent(text)
}
