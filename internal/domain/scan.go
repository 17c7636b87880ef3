package domain

import "time"

// ScanResult describes the outcome of one scan. Recoverable failures are
// kept in Errors; the scan itself still completes.
type ScanResult struct {
	RunID      string
	ScanDate   time.Time
	BillsFound int
	NewBills   int
	Added      []TrackedBill
	Errors     []string
}

// AddError records a recoverable failure.
func (r *ScanResult) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}
