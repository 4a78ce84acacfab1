// Package importer turns spreadsheet exports of invoices into create
// params. Russian and English headers are recognised.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	enc "github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/invoice"
	"github.com/MrJamesThe3rd/tally/internal/logger"
)

var ErrNoHeader = errors.New("no invoice header found: expected number, amount and date columns")

var dateLayouts = []string{"02.01.2006", "2006-01-02", "02-01-2006", "02/01/2006"}

var statusAliases = map[string]invoice.Status{
	"pending_payment": invoice.StatusPendingPayment,
	"pending":         invoice.StatusPendingPayment,
	"ожидает оплаты":  invoice.StatusPendingPayment,
	"paid":            invoice.StatusPaid,
	"оплачен":         invoice.StatusPaid,
	"оплачено":        invoice.StatusPaid,
	"overdue":         invoice.StatusOverdue,
	"просрочен":       invoice.StatusOverdue,
	"просрочено":      invoice.StatusOverdue,
	"cancelled":       invoice.StatusCancelled,
	"canceled":        invoice.StatusCancelled,
	"отменен":         invoice.StatusCancelled,
	"отменён":         invoice.StatusCancelled,
	"отменено":        invoice.StatusCancelled,
}

// Parser reads ';'-separated invoice exports in any supported encoding.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]invoice.CreateParams, error) {
	utf8r, charset, err := enc.NewDecodingReader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoHeader
	}

	log := logger.WithComponent("importer")
	log.Debug().
		Str("charset", charset).
		Str("profile", profile.Name).
		Int("header_row", headerIdx+1).
		Msg("invoice export detected")

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps normalized header names to their index in the row.
type colIndex map[string]int

func (c colIndex) get(name string) int {
	if name == "" {
		return -1
	}

	idx, ok := c[name]
	if !ok {
		return -1
	}

	return idx
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := normalizeHeader(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows converts data rows. Rows without a date (blank lines, totals)
// are skipped; any other malformed cell fails the whole import.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]invoice.CreateParams, error) {
	var (
		numberIdx   = cols.get(p.NumberCol)
		amountIdx   = cols.get(p.AmountCol)
		dateIdx     = cols.get(p.DateCol)
		supplierIdx = cols.get(p.SupplierCol)
		statusIdx   = cols.get(p.StatusCol)
		dueIdx      = cols.get(p.DueCol)
		descIdx     = cols.get(p.DescCol)
	)

	var out []invoice.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		dateStr := cellValue(row, dateIdx)
		if dateStr == "" {
			continue
		}

		issued, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		number := cellValue(row, numberIdx)
		if number == "" {
			return nil, fmt.Errorf("row %d: missing invoice number", rowNum)
		}

		params := invoice.CreateParams{
			Number:      number,
			Description: cellValue(row, descIdx),
			IssueDate:   issued,
		}

		if s := cellValue(row, amountIdx); s != "" {
			params.Amount, err = parseAmount(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid amount %q", rowNum, s)
			}
		}

		if s := cellValue(row, statusIdx); s != "" {
			status, ok := statusAliases[normalizeHeader(s)]
			if !ok {
				return nil, fmt.Errorf("row %d: unknown status %q", rowNum, s)
			}

			params.Status = status
		}

		if s := cellValue(row, supplierIdx); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid supplier id %q", rowNum, s)
			}

			params.SupplierID = &id
		}

		if s := cellValue(row, dueIdx); s != "" {
			due, err := parseDate(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: due date: %w", rowNum, err)
			}

			params.DueDate = &due
		}

		out = append(out, params)
	}

	return out, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
