package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar-date format used for dateAdded.
const DateLayout = "2006-01-02"

// CandidateBill is a bill as reported by a legislative source, not yet tracked.
type CandidateBill struct {
	BillNumber       string   `json:"bill_number" validate:"required"`
	Title            string   `json:"title" validate:"required"`
	Author           string   `json:"author"`
	Summary          string   `json:"summary"`
	CommitteesPassed []string `json:"committees_passed"`
	CurrentCommittee string   `json:"current_committee"`
	Status           string   `json:"status"`
	LastAction       string   `json:"last_action"`
	URL              string   `json:"url"`
}

// AnalysisStatus tracks where a bill sits in the human analysis workflow.
type AnalysisStatus string

const (
	AnalysisNeeded     AnalysisStatus = "needs-analysis"
	AnalysisInProgress AnalysisStatus = "in-progress"
	AnalysisDone       AnalysisStatus = "analyzed"
	AnalysisArchived   AnalysisStatus = "archived"
)

// Priority is a curator-assigned importance tag.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TrackedBill is a persisted bill. Notes, Priority and AnalysisStatus belong
// to curators and are never rewritten by a scan.
type TrackedBill struct {
	ID             int            `json:"id"`
	BillNumber     string         `json:"billNumber"`
	Title          string         `json:"title"`
	Author         string         `json:"author"`
	Committees     []string       `json:"committees"`
	Status         string         `json:"status"`
	AnalysisStatus AnalysisStatus `json:"analysisStatus"`
	Priority       Priority       `json:"priority"`
	DateAdded      string         `json:"dateAdded"`
	Notes          string         `json:"notes"`
	Summary        string         `json:"summary"`
	LastAction     string         `json:"lastAction"`
	URL            string         `json:"url"`
}

// Collection is the full persisted tracker state.
type Collection struct {
	LastUpdated time.Time     `json:"last_updated"`
	Bills       []TrackedBill `json:"bills"`
}

// MalformedBillError reports a candidate missing a required field.
type MalformedBillError struct {
	BillNumber string
	Fields     []string
}

func (e *MalformedBillError) Error() string {
	id := e.BillNumber
	if id == "" {
		id = "<unknown>"
	}
	return fmt.Sprintf("malformed candidate bill %s: missing %s", id, strings.Join(e.Fields, ", "))
}

var validate = validator.New()

// Validate checks the required fields of a candidate.
func (c CandidateBill) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate candidate %s: %w", c.BillNumber, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &MalformedBillError{BillNumber: c.BillNumber, Fields: fields}
}
