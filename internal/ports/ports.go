package ports

import (
	"context"
	"time"

	"BillScanner/internal/domain"
)

// BillSource pulls candidate bills from upstream legislative sources. A
// non-nil error may accompany a partial batch.
type BillSource interface {
	FetchCandidates(ctx context.Context, day time.Time) ([]domain.CandidateBill, error)
}

// BillStore loads and saves the tracked bill collection.
type BillStore interface {
	Load(ctx context.Context) (domain.Collection, error)
	Save(ctx context.Context, collection domain.Collection) error
}

// SummaryWriter renders a scan result for humans.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, result domain.ScanResult) error
}

// Notifier streams scan digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when scans execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
