package repository

import (
	"fmt"
	"strings"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// measureColumns are the observation table's nullable value columns in
// schema order. Every SQL store keeps all of them; the subject's schema
// records which ones were present in the source files.
func measureColumns() []string {
	ms := model.Measures()
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

func createTablesSQL(floatType, dateType string) []string {
	cols := make([]string, 0, len(model.Measures()))
	for _, c := range measureColumns() {
		cols = append(cols, fmt.Sprintf("%s %s", c, floatType))
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS subjects (
			subject_key TEXT PRIMARY KEY,
			fields      TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS observations (
			subject_key TEXT NOT NULL,
			seq         INTEGER NOT NULL,
			date        %s NOT NULL,
			category    TEXT NOT NULL,
			%s,
			PRIMARY KEY (subject_key, seq)
		)`, dateType, strings.Join(cols, ",\n\t\t\t")),
	}
}

func selectObservationsSQL(placeholder string) string {
	return fmt.Sprintf(`SELECT date, category, %s FROM observations WHERE subject_key = %s ORDER BY seq`,
		strings.Join(measureColumns(), ", "), placeholder)
}

// insertObservationSQL builds an INSERT with placeholders from ph(i), 1-based.
func insertObservationSQL(ph func(int) string) string {
	cols := append([]string{"subject_key", "seq", "date", "category"}, measureColumns()...)
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = ph(i + 1)
	}
	return fmt.Sprintf(`INSERT INTO observations (%s) VALUES (%s)`, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// observationArgs flattens o for insertObservationSQL; missing values are nil.
func observationArgs(key string, seq int, o model.Observation, date any) []any {
	args := []any{key, seq, date, o.Category}
	for _, m := range model.Measures() {
		if p := o.Get(m).Ptr(); p != nil {
			args = append(args, *p)
		} else {
			args = append(args, nil)
		}
	}
	return args
}
