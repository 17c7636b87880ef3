package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"BillScanner/internal/domain"
	"BillScanner/internal/ports"
	"BillScanner/internal/tracker"
)

// PipelineDeps wires all driven adapters into the scan pipeline.
type PipelineDeps struct {
	Source   ports.BillSource
	Store    ports.BillStore
	Summary  ports.SummaryWriter
	Notifier ports.Notifier
	Location *time.Location
	Logger   *slog.Logger
}

// Pipeline implements the bill tracking workflow.
type Pipeline struct {
	source   ports.BillSource
	store    ports.BillStore
	summary  ports.SummaryWriter
	notifier ports.Notifier
	loc      *time.Location
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		source:   deps.Source,
		store:    deps.Store,
		summary:  deps.Summary,
		notifier: deps.Notifier,
		loc:      loc,
		logger:   logger,
	}
}

// Scan performs one load, fetch, filter, merge and persist pass.
//
// Source, loader, notifier and summary failures are recorded in the result and
// the scan continues. A malformed relevant candidate or a failed save aborts
// the scan with an error.
func (p *Pipeline) Scan(ctx context.Context, now time.Time) (domain.ScanResult, error) {
	if p.store == nil {
		return domain.ScanResult{}, fmt.Errorf("bill store is not configured")
	}

	result := domain.ScanResult{
		RunID:    uuid.NewString(),
		ScanDate: now,
	}
	logger := p.logger.With("run_id", result.RunID)
	logger.Info("scan started")

	collection, err := p.store.Load(ctx)
	if err != nil {
		p.recordError(logger, &result, fmt.Errorf("load existing bills: %w", err))
		collection = domain.Collection{}
	}

	candidates := p.fetch(ctx, logger, &result, now)

	relevant := tracker.FilterRelevant(candidates)
	for _, c := range relevant {
		if err := c.Validate(); err != nil {
			logger.Error("scan aborted", "error", err)
			return result, err
		}
	}
	result.BillsFound = len(relevant)

	merged := tracker.Merge(collection.Bills, relevant, now.In(p.loc))
	result.NewBills = merged.Added()
	result.Added = merged.Admitted

	if err := p.store.Save(ctx, domain.Collection{LastUpdated: now, Bills: merged.Bills}); err != nil {
		logger.Error("scan aborted", "error", err)
		return result, fmt.Errorf("save bills: %w", err)
	}

	if p.notifier != nil && result.NewBills > 0 {
		if err := p.notifier.PublishDigest(ctx, buildDigestMessage(result.Added)); err != nil {
			p.recordError(logger, &result, fmt.Errorf("publish digest: %w", err))
		}
	}

	if p.summary != nil {
		if err := p.summary.WriteSummary(ctx, result); err != nil {
			p.recordError(logger, &result, fmt.Errorf("write summary: %w", err))
		}
	}

	logger.Info("scan finished",
		"candidates", len(candidates),
		"bills_found", result.BillsFound,
		"new_bills", result.NewBills,
		"errors", len(result.Errors),
	)
	return result, nil
}

func buildDigestMessage(bills []domain.TrackedBill) string {
	if len(bills) == 0 {
		return ""
	}

	var formatted strings.Builder
	fmt.Fprintf(&formatted, "*%d new bill(s) pending in Senate Appropriations*\n\n", len(bills))
	for _, bill := range bills {
		fmt.Fprintf(&formatted, "- %s: %s\n%s\n%s\n\n",
			bill.BillNumber,
			bill.Title,
			strings.Join(bill.Committees, ", "),
			bill.URL)
	}

	return formatted.String()
}

// Tracked returns the persisted collection as is.
func (p *Pipeline) Tracked(ctx context.Context) (domain.Collection, error) {
	if p.store == nil {
		return domain.Collection{}, fmt.Errorf("bill store is not configured")
	}
	return p.store.Load(ctx)
}

func (p *Pipeline) fetch(ctx context.Context, logger *slog.Logger, result *domain.ScanResult, now time.Time) []domain.CandidateBill {
	if p.source == nil {
		return nil
	}

	candidates, err := p.source.FetchCandidates(ctx, now)
	if err == nil {
		return candidates
	}

	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			p.recordError(logger, result, fmt.Errorf("fetch candidates: %w", e))
		}
	} else {
		p.recordError(logger, result, fmt.Errorf("fetch candidates: %w", err))
	}
	return candidates
}

func (p *Pipeline) recordError(logger *slog.Logger, result *domain.ScanResult, err error) {
	logger.Warn("recoverable scan error", "error", err)
	result.AddError(err)
}
