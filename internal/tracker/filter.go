package tracker

import (
	"strings"

	"BillScanner/internal/domain"
)

var passedCommitteeMarkers = []string{"Housing", "Judiciary"}

const pendingCommitteeMarker = "Appropriations"

// IsRelevant reports whether a bill passed Housing or Judiciary and now sits
// in Appropriations. Matching is case-sensitive substring matching.
func IsRelevant(bill domain.CandidateBill) bool {
	if !strings.Contains(bill.CurrentCommittee, pendingCommitteeMarker) {
		return false
	}

	for _, committee := range bill.CommitteesPassed {
		for _, marker := range passedCommitteeMarkers {
			if strings.Contains(committee, marker) {
				return true
			}
		}
	}
	return false
}

// FilterRelevant keeps relevant candidates in input order.
func FilterRelevant(candidates []domain.CandidateBill) []domain.CandidateBill {
	relevant := make([]domain.CandidateBill, 0, len(candidates))
	for _, c := range candidates {
		if IsRelevant(c) {
			relevant = append(relevant, c)
		}
	}
	return relevant
}
