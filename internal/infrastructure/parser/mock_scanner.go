package parser

import (
	"context"

	"BillScanner/internal/domain"
	"BillScanner/internal/scanner"
)

// MockScanner returns a fixed batch of sample bills. It stands in for a live
// legislative feed.
type MockScanner struct{}

// NewMockScanner builds the sample-data strategy.
func NewMockScanner() *MockScanner {
	return &MockScanner{}
}

// Name identifies the strategy inside the registry.
func (m *MockScanner) Name() string {
	return "mock"
}

// Scan returns a fresh copy of the sample batch.
func (m *MockScanner) Scan(_ context.Context, _ scanner.Request) ([]domain.CandidateBill, error) {
	return []domain.CandidateBill{
		{
			BillNumber:       "AB-1234",
			Title:            "Housing Development: Streamlined Approval Process",
			Author:           "Assembly Member Smith",
			Summary:          "Requires local agencies to approve qualifying multifamily housing projects ministerially.",
			CommitteesPassed: []string{"Assembly Housing", "Senate Housing"},
			CurrentCommittee: "Senate Appropriations",
			Status:           "Pending in Senate Appropriations",
			LastAction:       "2024-06-15",
			URL:              "https://leginfo.legislature.ca.gov/faces/billNavClient.xhtml?bill_id=202320240AB1234",
		},
		{
			BillNumber:       "AB-5678",
			Title:            "Civil Procedure: Tenant Protections",
			Author:           "Assembly Member Johnson",
			Summary:          "Expands notice requirements before an unlawful detainer action may be filed.",
			CommitteesPassed: []string{"Assembly Judiciary", "Senate Judiciary"},
			CurrentCommittee: "Senate Appropriations",
			Status:           "Pending in Senate Appropriations",
			LastAction:       "2024-06-18",
			URL:              "https://leginfo.legislature.ca.gov/faces/billNavClient.xhtml?bill_id=202320240AB5678",
		},
		{
			BillNumber:       "AB-9012",
			Title:            "Education: School Facilities Funding",
			Author:           "Assembly Member Garcia",
			Summary:          "Revises the allocation formula for school facility modernization grants.",
			CommitteesPassed: []string{"Assembly Education", "Senate Education"},
			CurrentCommittee: "Senate Appropriations",
			Status:           "Pending in Senate Appropriations",
			LastAction:       "2024-06-20",
			URL:              "https://leginfo.legislature.ca.gov/faces/billNavClient.xhtml?bill_id=202320240AB9012",
		},
	}, nil
}
