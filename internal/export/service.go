package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dfcamargo/extracto-pipeline/internal/repository"
)

// Service produces XLSX bytes from an owner's persisted transactions.
type Service struct {
	txs    repository.TransactionRepository
	logger *slog.Logger
}

func NewService(txs repository.TransactionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{txs: txs, logger: logger}
}

// ExportXLSX returns a workbook for the given owner and date window.
// If only from is provided -> from..today (inclusive).
// If neither is provided   -> all transactions for the owner.
func (s *Service) ExportXLSX(ctx context.Context, ownerID string, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	txs, err := s.txs.ListByOwner(ctx, ownerID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Transactions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Date",
		"Merchant",
		"Amount",
		"Type",
		"Category",
		"Auth Code",
		"Source Document",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, t := range txs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, t.Date.Format("2006-01-02"))
		write(2, t.Merchant)
		write(3, t.SignedAmount().StringFixed(2))
		write(4, string(t.Type))
		write(5, string(t.Category))
		write(6, t.AuthCode)
		write(7, t.SourceDocumentID)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	s.logger.Info("export built",
		"owner_id", ownerID, "rows", len(txs),
		"duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
