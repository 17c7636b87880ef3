package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"BillScanner/internal/domain"
	"BillScanner/internal/ports"
)

// MarkdownWriter writes the scan summary to a Markdown file.
type MarkdownWriter struct {
	path string
	loc  *time.Location
}

var _ ports.SummaryWriter = (*MarkdownWriter)(nil)

// NewMarkdownWriter renders timestamps in loc (UTC when nil).
func NewMarkdownWriter(path string, loc *time.Location) *MarkdownWriter {
	if loc == nil {
		loc = time.UTC
	}
	return &MarkdownWriter{path: path, loc: loc}
}

// WriteSummary replaces the summary file with the rendered result.
func (w *MarkdownWriter) WriteSummary(_ context.Context, result domain.ScanResult) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(w.path, []byte(Render(result, w.loc)), 0o644); err != nil {
		return fmt.Errorf("write summary %s: %w", w.path, err)
	}
	return nil
}

// Render formats a scan result as Markdown.
func Render(result domain.ScanResult, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	b.WriteString("# California Bill Scanner Summary\n\n")
	fmt.Fprintf(&b, "- **Bills Found:** %d\n", result.BillsFound)
	fmt.Fprintf(&b, "- **New Bills Added:** %d\n", result.NewBills)
	fmt.Fprintf(&b, "- **Errors:** %d\n", len(result.Errors))
	fmt.Fprintf(&b, "- **Last Scan:** %s\n", result.ScanDate.In(loc).Format(time.RFC3339))
	if result.RunID != "" {
		fmt.Fprintf(&b, "- **Run:** %s\n", result.RunID)
	}

	if len(result.Added) > 0 {
		b.WriteString("\n## New Bills\n\n")
		for _, bill := range result.Added {
			fmt.Fprintf(&b, "- %s (#%d): %s", bill.BillNumber, bill.ID, bill.Title)
			if bill.Author != "" {
				fmt.Fprintf(&b, " by %s", bill.Author)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n## Errors\n\n")
	if len(result.Errors) == 0 {
		b.WriteString("No errors\n")
		return b.String()
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(&b, "- %s\n", msg)
	}
	return b.String()
}
