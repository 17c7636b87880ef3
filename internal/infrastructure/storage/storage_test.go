package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BillScanner/internal/domain"
	"BillScanner/internal/usecase"
)

func sampleCollection() domain.Collection {
	return domain.Collection{
		LastUpdated: time.Date(2024, time.June, 20, 6, 0, 0, 0, time.UTC),
		Bills: []domain.TrackedBill{
			{
				ID:             1,
				BillNumber:     "AB-1234",
				Title:          "Housing Development",
				Author:         "Smith",
				Committees:     []string{"Assembly Housing", "Senate Housing"},
				Status:         "Pending",
				AnalysisStatus: domain.AnalysisNeeded,
				Priority:       domain.PriorityMedium,
				DateAdded:      "2024-06-20",
				Notes:          "",
				Summary:        "Streamlines approvals.",
				LastAction:     "2024-06-15",
				URL:            "https://leginfo.legislature.ca.gov/AB1234",
			},
			{
				ID:             2,
				BillNumber:     "AB-5678",
				Title:          "Tenant Protections",
				Committees:     []string{"Senate Judiciary"},
				AnalysisStatus: domain.AnalysisInProgress,
				Priority:       domain.PriorityHigh,
				DateAdded:      "2024-06-20",
				Notes:          "check fiscal note",
			},
		},
	}
}

func TestJSONStoreMissingFile(t *testing.T) {
	t.Parallel()

	store := NewJSONStore(filepath.Join(t.TempDir(), "bills.json"))
	collection, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, collection.Bills)
}

func TestJSONStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "bills.json")
	store := NewJSONStore(path)
	want := sampleCollection()

	require.NoError(t, store.Save(context.Background(), want))
	got, err := store.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, want.LastUpdated.Equal(got.LastUpdated))
	assert.Equal(t, want.Bills, got.Bills)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_updated"`)
	assert.Contains(t, string(raw), `"billNumber": "AB-1234"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestJSONStoreEmptySaveWritesArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bills.json")
	store := NewJSONStore(path)
	require.NoError(t, store.Save(context.Background(), domain.Collection{LastUpdated: time.Now()}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bills": []`)
}

func TestJSONStoreCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bills.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	collection, err := NewJSONStore(path).Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
	assert.Empty(t, collection.Bills)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "corrupt file must be moved aside")

	backups, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	raw, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
	assert.True(t, collection.LastUpdated.IsZero())
}

func TestJSONStoreCorruptFileSurvivesNextSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "bills.json")
	curated := `{"bills":[{"id":1,"billNumber":"AB-1","notes":"keep"` // truncated write
	require.NoError(t, os.WriteFile(path, []byte(curated), 0o600))

	store := NewJSONStore(path)
	_, err := store.Load(ctx)
	require.Error(t, err)
	require.NoError(t, store.Save(ctx, sampleCollection()))

	backups, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	raw, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, curated, string(raw))
}

func TestSQLStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenSQLStore(ctx, "sqlite", filepath.Join(t.TempDir(), "bills.db"))
	require.NoError(t, err)
	defer store.Close()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Bills)
	assert.True(t, empty.LastUpdated.IsZero())

	want := sampleCollection()
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, want.LastUpdated.Equal(got.LastUpdated))
	require.Len(t, got.Bills, 2)
	assert.Equal(t, want.Bills[0], got.Bills[0])
	assert.Equal(t, "check fiscal note", got.Bills[1].Notes)
}

func TestSQLStoreKeepsCuratedRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenSQLStore(ctx, "sqlite", filepath.Join(t.TempDir(), "bills.db"))
	require.NoError(t, err)
	defer store.Close()

	first := sampleCollection()
	require.NoError(t, store.Save(ctx, first))

	_, err = store.db.ExecContext(ctx, `UPDATE tracked_bills SET notes = 'curated', priority = 'high' WHERE bill_number = 'AB-1234'`)
	require.NoError(t, err)

	second := sampleCollection()
	second.LastUpdated = first.LastUpdated.Add(24 * time.Hour)
	second.Bills = append(second.Bills, domain.TrackedBill{
		ID: 3, BillNumber: "AB-9999", Title: "New", Committees: []string{"Senate Housing"},
		AnalysisStatus: domain.AnalysisNeeded, Priority: domain.PriorityMedium,
	})
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Bills, 3)
	assert.Equal(t, "curated", got.Bills[0].Notes)
	assert.Equal(t, domain.PriorityHigh, got.Bills[0].Priority)
	assert.Equal(t, 3, got.Bills[2].ID)
	assert.True(t, second.LastUpdated.Equal(got.LastUpdated))
}

func TestSQLStoreShiftsIDsPastStoredMaximum(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenSQLStore(ctx, "sqlite", filepath.Join(t.TempDir(), "bills.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, sampleCollection()))

	// Ids 1 and 2 are taken; a caller that could not load them starts over at 1.
	stale := domain.Collection{
		LastUpdated: time.Date(2024, time.June, 21, 6, 0, 0, 0, time.UTC),
		Bills: []domain.TrackedBill{
			{ID: 1, BillNumber: "AB-3000", Title: "First new", Committees: []string{"Senate Housing"}},
			{ID: 2, BillNumber: "AB-1234", Title: "Already stored"},
			{ID: 3, BillNumber: "AB-4000", Title: "Second new", Committees: []string{"Senate Judiciary"}},
		},
	}
	require.NoError(t, store.Save(ctx, stale))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Bills, 4)
	assert.Equal(t, "Housing Development", got.Bills[0].Title)
	assert.Equal(t, 3, got.Bills[2].ID)
	assert.Equal(t, "AB-3000", got.Bills[2].BillNumber)
	assert.Equal(t, 4, got.Bills[3].ID)
	assert.Equal(t, "AB-4000", got.Bills[3].BillNumber)
}

func TestScanContinuesWhenSQLRowIsCorrupt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := OpenSQLStore(ctx, "sqlite", filepath.Join(t.TempDir(), "bills.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, domain.Collection{
		LastUpdated: time.Date(2024, time.June, 20, 6, 0, 0, 0, time.UTC),
		Bills:       []domain.TrackedBill{{ID: 1, BillNumber: "AB-1", Title: "Existing", Committees: []string{"Senate Housing"}}},
	}))
	_, err = store.db.ExecContext(ctx, `UPDATE tracked_bills SET committees = 'Senate Housing' WHERE bill_number = 'AB-1'`)
	require.NoError(t, err)

	source := candidateSource{{
		BillNumber:       "AB-2",
		Title:            "New bill",
		CommitteesPassed: []string{"Senate Housing"},
		CurrentCommittee: "Senate Appropriations",
	}}
	p := usecase.NewPipeline(usecase.PipelineDeps{Source: source, Store: store})

	res, err := p.Scan(ctx, time.Date(2024, time.June, 21, 6, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewBills)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "decode committees for AB-1")

	var ids []int
	rows, err := store.db.QueryContext(ctx, `SELECT id FROM tracked_bills ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id int
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []int{1, 2}, ids)
}

type candidateSource []domain.CandidateBill

func (c candidateSource) FetchCandidates(context.Context, time.Time) ([]domain.CandidateBill, error) {
	return c, nil
}

func TestSQLStorePostgresPlaceholders(t *testing.T) {
	t.Parallel()

	query, _, err := builderFor("postgres").Select("value").From(metaTable).Where("name = ?", "last_updated").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT value FROM scan_meta WHERE name = $1", query)
}
