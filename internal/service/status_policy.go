package service

import "github.com/spec-kit/grievance-service/internal/domain"

// StatusPolicy decides whether a complaint may move between two statuses.
// Label membership is checked separately; a policy only orders labels.
type StatusPolicy interface {
	Allow(from, to domain.ComplaintStatus) bool
}

// AnyTransition lets any status follow any other.
type AnyTransition struct{}

// Allow always returns true.
func (AnyTransition) Allow(_, _ domain.ComplaintStatus) bool { return true }

// TransitionTable restricts moves to the listed edges. Staying on the same
// status is always allowed.
type TransitionTable map[domain.ComplaintStatus][]domain.ComplaintStatus

// Allow reports whether to is reachable from from.
func (t TransitionTable) Allow(from, to domain.ComplaintStatus) bool {
	if from == to {
		return true
	}
	for _, candidate := range t[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
