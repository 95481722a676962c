package render

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/okian/pitchtrack/internal/domain/aggregate"
	"github.com/okian/pitchtrack/internal/domain/model"
)

// Sheet names of the summary workbook.
const (
	SheetSummary      = "Summary"
	SheetIndicator    = "Indicator"
	SheetObservations = "Observations"
)

// Workbook is the content of a summary export.
type Workbook struct {
	Subject      string
	Session      string
	Schema       model.Schema
	Summary      []aggregate.SummaryRow
	Indicator    []aggregate.IndicatorRow
	Observations []model.Observation
}

// XLSX writes wb as a three-sheet workbook.
func (r *Renderer) XLSX(w io.Writer, wb Workbook) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	for _, name := range []string{SheetIndicator, SheetObservations} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	measures := wb.Schema.Measures()

	// Summary
	header := []any{"category", "count"}
	for _, m := range measures {
		header = append(header, "mean_"+m.String())
	}
	header = append(header, "max_velocity", "max_total_spin", "strike_rate_pct", "velocity_pct_fb")
	rows := [][]any{{"subject", wb.Subject, "session", wb.Session}, {}, header}
	for _, s := range wb.Summary {
		row := []any{s.Category, s.Count}
		for _, m := range measures {
			row = append(row, cell(round2(s.Means[m])))
		}
		row = append(row, cell(s.MaxVelocity), cell(s.MaxTotalSpin), cell(s.StrikeRate), cell(s.VelocityPct))
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetSummary, rows, bold, 3); err != nil {
		return err
	}

	// Indicator
	rows = [][]any{{"category", "fastball", "mean_velocity", "velocity_pct_fb", "mean_spin_efficiency"}}
	for _, in := range wb.Indicator {
		rows = append(rows, []any{in.Category, in.Fastball, ptrCell(in.MeanVelocity), ptrCell(in.VelocityPct), ptrCell(in.MeanSpinEfficiency)})
	}
	if err := writeRows(f, SheetIndicator, rows, bold, 1); err != nil {
		return err
	}

	// Observations
	header = []any{"date", "category"}
	for _, m := range measures {
		header = append(header, m.String())
	}
	rows = [][]any{header}
	for _, o := range wb.Observations {
		row := []any{o.DateString(), o.Category}
		for _, m := range measures {
			row = append(row, cell(o.Get(m)))
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, SheetObservations, rows, bold, 1); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}

// writeRows writes rows from A1 down and bolds the header row (1-based).
func writeRows(f *excelize.File, sheet string, rows [][]any, style, headerRow int) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRender, sheet, err)
		}
	}
	if headerRow > 0 && headerRow <= len(rows) && len(rows[headerRow-1]) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, headerRow)
		last, _ := excelize.CoordinatesToCellName(len(rows[headerRow-1]), headerRow)
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
	}
	return nil
}

// cell leaves missing values as empty cells.
func cell(v model.Value) any {
	if !v.Valid {
		return nil
	}
	return v.Float
}

func ptrCell(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func round2(v model.Value) model.Value {
	if !v.Valid {
		return v
	}
	return model.Some(math.Round(v.Float*100) / 100)
}
