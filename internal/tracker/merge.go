package tracker

import (
	"time"

	"BillScanner/internal/domain"
)

// MergeResult is the updated collection plus the bills admitted by this merge.
type MergeResult struct {
	Bills    []domain.TrackedBill
	Admitted []domain.TrackedBill
}

// Added returns the number of newly admitted bills.
func (m MergeResult) Added() int {
	return len(m.Admitted)
}

// Merge appends candidates whose bill number is not yet tracked. Existing
// bills keep their order and fields; admitted bills follow in candidate
// order with ids starting at max(existing id)+1.
//
// Candidates must already be validated. Merge panics on a candidate without a
// bill number or title.
func Merge(existing []domain.TrackedBill, candidates []domain.CandidateBill, today time.Time) MergeResult {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	maxID := 0
	for _, bill := range existing {
		seen[bill.BillNumber] = struct{}{}
		if bill.ID > maxID {
			maxID = bill.ID
		}
	}

	dateAdded := today.Format(domain.DateLayout)
	var admitted []domain.TrackedBill
	for _, c := range candidates {
		if c.BillNumber == "" || c.Title == "" {
			panic(&domain.MalformedBillError{BillNumber: c.BillNumber, Fields: missingFields(c)})
		}
		if _, ok := seen[c.BillNumber]; ok {
			continue
		}
		seen[c.BillNumber] = struct{}{}
		admitted = append(admitted, newTrackedBill(c, dateAdded))
	}

	for i := range admitted {
		admitted[i].ID = maxID + i + 1
	}

	bills := make([]domain.TrackedBill, 0, len(existing)+len(admitted))
	bills = append(bills, existing...)
	bills = append(bills, admitted...)

	return MergeResult{Bills: bills, Admitted: admitted}
}

func newTrackedBill(c domain.CandidateBill, dateAdded string) domain.TrackedBill {
	committees := make([]string, len(c.CommitteesPassed))
	copy(committees, c.CommitteesPassed)

	return domain.TrackedBill{
		BillNumber:     c.BillNumber,
		Title:          c.Title,
		Author:         c.Author,
		Committees:     committees,
		Status:         c.Status,
		AnalysisStatus: domain.AnalysisNeeded,
		Priority:       domain.PriorityMedium,
		DateAdded:      dateAdded,
		Notes:          "",
		Summary:        c.Summary,
		LastAction:     c.LastAction,
		URL:            c.URL,
	}
}

func missingFields(c domain.CandidateBill) []string {
	var fields []string
	if c.BillNumber == "" {
		fields = append(fields, "BillNumber")
	}
	if c.Title == "" {
		fields = append(fields, "Title")
	}
	return fields
}
