package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"BillScanner/internal/domain"
	"BillScanner/internal/scanner"
)

const userAgent = "CA-Legislative-Scanner/1.0 (Research Purpose)"

// LeginfoScanner reads an HTML bill-status table and turns rows into candidates.
//
// Expected markup: table.bill-status rows with td cells classed measure,
// title, author, summary, committees (separated by ";"), location, status and
// last-action. The measure cell may carry a link to the bill page.
type LeginfoScanner struct {
	client *http.Client
}

// NewLeginfoScanner wires an HTTP client; nil gets a 20s-timeout default.
func NewLeginfoScanner(client *http.Client) *LeginfoScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &LeginfoScanner{client: client}
}

// Name identifies the strategy inside the registry.
func (l *LeginfoScanner) Name() string {
	return "leginfo"
}

// Scan fetches req.URL and parses every bill row on the page.
func (l *LeginfoScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.CandidateBill, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url provided for source %s", req.SourceName)
	}

	doc, err := l.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	return extractBills(doc, req.URL), nil
}

func (l *LeginfoScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leginfo returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func extractBills(doc *goquery.Document, pageURL string) []domain.CandidateBill {
	var bills []domain.CandidateBill
	doc.Find("table.bill-status tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("td").Length() == 0 {
			return
		}
		bills = append(bills, parseRow(row, pageURL))
	})
	return bills
}

func parseRow(row *goquery.Selection, pageURL string) domain.CandidateBill {
	cell := func(class string) string {
		return strings.TrimSpace(row.Find("td." + class).First().Text())
	}

	link := ""
	if href, ok := row.Find("td.measure a").First().Attr("href"); ok {
		link = resolveLink(pageURL, href)
	}

	return domain.CandidateBill{
		BillNumber:       normalizeBillNumber(cell("measure")),
		Title:            cell("title"),
		Author:           cell("author"),
		Summary:          cell("summary"),
		CommitteesPassed: splitCommittees(cell("committees")),
		CurrentCommittee: cell("location"),
		Status:           cell("status"),
		LastAction:       cell("last-action"),
		URL:              link,
	}
}

// normalizeBillNumber turns "AB 1234" or "ab1234" into "AB-1234".
func normalizeBillNumber(raw string) string {
	raw = strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	raw = strings.ReplaceAll(raw, "-", "")
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if i == 0 {
				return raw
			}
			return raw[:i] + "-" + raw[i:]
		}
	}
	return raw
}

func splitCommittees(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	committees := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			committees = append(committees, p)
		}
	}
	return committees
}

func resolveLink(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	parsedBase, err := url.Parse(base)
	if err != nil {
		return href
	}
	return parsedBase.ResolveReference(ref).String()
}
