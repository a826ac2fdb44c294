package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abzalbek/gigdesk-ledger/internal/config"
	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

// ReportStore is the aggregation data access of the reporting engine.
type ReportStore interface {
	ProfessionEarnings(ctx context.Context, from, to time.Time) ([]model.ProfessionEarnings, error)
	ClientEarnings(ctx context.Context, from, to time.Time, limit int) ([]model.ClientEarnings, error)
}

type ExcelGenerator interface {
	Generate(report model.PeriodReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.PeriodReport) ([]byte, error)
}

// Period is a report date range. Zero values fall back to the defaults:
// start of the current year and today.
type Period struct {
	Start time.Time
	End   time.Time
}

type ExportFormat string

const (
	ExportFormatExcel ExportFormat = "xlsx"
	ExportFormatPDF   ExportFormat = "pdf"
)

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

type ReportService struct {
	store        ReportStore
	excel        ExcelGenerator
	pdf          PDFGenerator
	clientsLimit int
	now          func() time.Time
}

func NewReportService(store ReportStore, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		store:        store,
		excel:        excel,
		pdf:          pdf,
		clientsLimit: cfg.Ledger.DefaultClientsLimit,
		now:          time.Now,
	}
}

// BestProfession returns the profession that earned the most over the
// period. Ties resolve to the lexicographically smaller profession.
func (s *ReportService) BestProfession(ctx context.Context, period Period) (*model.ProfessionEarnings, error) {
	start, endExclusive, err := s.resolvePeriod(period)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ProfessionEarnings(ctx, start, endExclusive)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no professions found within the selected period", ErrNotFound)
	}
	return &rows[0], nil
}

// BestClients returns the top-paying clients of the period, highest total
// first. A non-positive limit falls back to the configured default.
func (s *ReportService) BestClients(ctx context.Context, period Period, limit int) ([]model.ClientEarnings, error) {
	start, endExclusive, err := s.resolvePeriod(period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.clientsLimit
	}

	rows, err := s.store.ClientEarnings(ctx, start, endExclusive, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no clients found within the selected period", ErrNotFound)
	}
	return rows, nil
}

// ExportPeriodReport assembles the period aggregates and renders them as
// an xlsx workbook or a pdf statement.
func (s *ReportService) ExportPeriodReport(ctx context.Context, period Period, limit int, format ExportFormat) (*ExportResult, error) {
	start, endExclusive, err := s.resolvePeriod(period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.clientsLimit
	}

	professions, err := s.store.ProfessionEarnings(ctx, start, endExclusive)
	if err != nil {
		return nil, err
	}
	if len(professions) == 0 {
		return nil, fmt.Errorf("%w: no paid jobs within the selected period", ErrNotFound)
	}
	clients, err := s.store.ClientEarnings(ctx, start, endExclusive, limit)
	if err != nil {
		return nil, err
	}

	totalPaid := decimal.Zero
	for _, row := range professions {
		totalPaid = totalPaid.Add(row.Total)
	}

	report := model.PeriodReport{
		PeriodStart:    start,
		PeriodEnd:      endExclusive.Add(-24 * time.Hour),
		TotalPaid:      totalPaid,
		BestProfession: &professions[0],
		Clients:        clients,
	}

	switch format {
	case ExportFormatExcel:
		content, err := s.excel.Generate(report)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    buildExportFileName(report, "xlsx"),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Generate(report)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			FileName:    buildExportFileName(report, "pdf"),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format", ErrInvalidInput)
	}
}

func (s *ReportService) resolvePeriod(period Period) (time.Time, time.Time, error) {
	now := s.now().UTC()

	start := period.Start
	if start.IsZero() {
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	end := period.End
	if end.IsZero() {
		end = now
	}

	start = dateOnly(start)
	endDay := dateOnly(end)
	if start.After(endDay) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date must be before end date", ErrInvalidInput)
	}

	// A date-only end covers the whole day.
	return start, endDay.Add(24 * time.Hour), nil
}

func buildExportFileName(report model.PeriodReport, ext string) string {
	return fmt.Sprintf("ledger-report-%s-%s.%s",
		report.PeriodStart.Format("20060102"),
		report.PeriodEnd.Format("20060102"),
		ext,
	)
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
