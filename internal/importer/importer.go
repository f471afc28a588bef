// Package importer turns an uploaded xlsx spreadsheet into ledger
// records: one settings row for the draw plus one client per data row.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"lotocontrol/internal/models"
)

// DateFormat is the only accepted draw-date format in the spreadsheet
// (dd/MM/yyyy).
const DateFormat = "02/01/2006"

// ExpectedHeader is the required header row, in order, at exact column
// indexes 0..4.
var ExpectedHeader = []string{
	"Cliente",
	"Fecha Sorteo",
	"Precio Décimo",
	"Décimos Entregados",
	"Deuda Anterior",
}

// Column indexes of the fixed sheet layout.
const (
	colName = iota
	colDrawDate
	colTicketPrice
	colDelivered
	colPreviousDebt
)

// Error kinds. Callers match with errors.Is; import functions never
// panic and never return a partial result alongside an error.
var (
	// ErrFormat: header row missing or mismatched.
	ErrFormat = errors.New("unexpected spreadsheet format")
	// ErrParse: a data row's date or numeric cell failed to convert.
	ErrParse = errors.New("invalid cell value")
	// ErrIO: the workbook could not be opened or decoded.
	ErrIO = errors.New("unreadable spreadsheet")
)

// Result is a fully parsed spreadsheet: the draw settings plus every
// client row, in sheet order.
type Result struct {
	Clients  []models.Client
	Settings models.LotterySettings
}

// ValidateFormat reports whether the workbook's first sheet carries the
// expected header row. It never fails: any error while opening or
// reading the file counts as an invalid format.
func ValidateFormat(r io.Reader) bool {
	rows, err := readRows(r)
	if err != nil || len(rows) == 0 {
		return false
	}
	header := rows[0]
	if len(header) < len(ExpectedHeader) {
		return false
	}
	for i, want := range ExpectedHeader {
		if header[i] != want {
			return false
		}
	}
	return true
}

// Import parses the workbook's first sheet into a Result.
//
// Rows are read from index 1 (after the header) to the last populated
// row. A row without a name cell is skipped; it does not abort the
// import. The draw settings come only from the first data row: its
// date cell (dd/MM/yyyy, defaulting to today when absent) and price
// cell set the singleton settings record, later rows' date and price
// cells are ignored. Every imported client starts with zero returned
// tickets and zero paid.
func Import(r io.Reader) (*Result, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	settings := models.LotterySettings{DrawDate: today()}
	var clients []models.Client

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := cell(row, colName)
		if name == "" {
			continue
		}

		price, err := numericCell(row, colTicketPrice)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		delivered, err := numericCell(row, colDelivered)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		debt, err := numericCell(row, colPreviousDebt)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		if i == 1 {
			if dateStr := cell(row, colDrawDate); dateStr != "" {
				d, err := time.Parse(DateFormat, dateStr)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w: draw date %q is not dd/mm/yyyy", i+1, ErrParse, dateStr)
				}
				settings.DrawDate = d
			}
			settings.TicketPrice = price
		}

		clients = append(clients, models.Client{
			Name:             name,
			TicketsDelivered: int(delivered),
			PreviousDebt:     debt,
		})
	}

	return &Result{Clients: clients, Settings: settings}, nil
}

// readRows opens the workbook and returns the first sheet as rows of
// formatted cell values.
func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrIO)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return rows, nil
}

// cell returns the cell at idx, or "" when the row is shorter.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// numericCell parses the cell at idx as a float. An absent or empty
// cell defaults to 0; anything non-numeric is an ErrParse.
func numericCell(row []string, idx int) (float64, error) {
	raw := cell(row, idx)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrParse, raw)
	}
	return v, nil
}

func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
