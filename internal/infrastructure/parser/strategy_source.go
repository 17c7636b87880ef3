package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"BillScanner/internal/config"
	"BillScanner/internal/domain"
	"BillScanner/internal/ports"
	"BillScanner/internal/scanner"
)

// StrategySource implements BillSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.BillSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchCandidates runs every configured source. A failing source does not stop
// the others; its error is joined into the returned error alongside whatever
// candidates the remaining sources produced.
func (s *StrategySource) FetchCandidates(ctx context.Context, day time.Time) ([]domain.CandidateBill, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch candidates", "sources", len(s.sources), "day", day.Format("2006-01-02"))

	var (
		aggregated []domain.CandidateBill
		errs       []error
	)
	for _, src := range s.sources {
		s.debug("process source", "source", src.Name, "scanner", src.Scanner)
		strategy, err := s.registry.Resolve(src.Scanner)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.Name, err))
			continue
		}

		req := scanner.Request{
			Day:        day,
			SourceName: src.Name,
			URL:        src.URL,
			Options:    src.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("scan source %s: %w", src.Name, err))
			continue
		}

		s.debug("source produced candidates", "source", src.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.debug("strategy source done", "total_candidates", len(aggregated), "failed_sources", len(errs))
	return aggregated, errors.Join(errs...)
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
