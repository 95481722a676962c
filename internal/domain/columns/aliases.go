package columns

import (
	"slices"

	"github.com/okian/pitchtrack/internal/domain/model"
)

// Canonical non-measure fields.
const (
	FieldDate     = "date"
	FieldCategory = "category"
)

// Entry maps one canonical field to its accepted header spellings in priority order.
type Entry struct {
	Field   string
	Aliases []string
}

// AliasTable is the ordered list of field entries consulted by the Resolver.
type AliasTable []Entry

// DefaultAliases covers the English and Japanese device exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		{Field: FieldDate, Aliases: []string{"Date", "日付", "Date Time", "DateTime"}},
		{Field: FieldCategory, Aliases: []string{"Pitch Type", "球種", "PitchType", "Type"}},
		{Field: model.Velocity.String(), Aliases: []string{"Velocity", "Velo", "球速", "Speed"}},
		{Field: model.TotalSpin.String(), Aliases: []string{"Total Spin", "回転数", "Spin Rate", "TotalSpin"}},
		{Field: model.TrueSpin.String(), Aliases: []string{"True Spin (release)", "True Spin", "トゥルースピン"}},
		{Field: model.SpinEfficiency.String(), Aliases: []string{"Spin Efficiency (release)", "Spin Efficiency", "回転効率"}},
		{Field: model.VerticalBreak.String(), Aliases: []string{"VB (trajectory)", "VB", "Vertical Break", "高さ変化"}},
		{Field: model.HorizontalBreak.String(), Aliases: []string{"HB (trajectory)", "HB", "Horizontal Break", "横変化"}},
		{Field: model.SpinAxis.String(), Aliases: []string{"Spin Axis", "Spin Direction", "回転軸"}},
		{Field: model.Strike.String(), Aliases: []string{"Is Strike", "Strike", "判定"}},
	}
}

// Override returns a copy of t where every field present in overrides has its
// aliases replaced. Fields not already in t are appended in sorted order.
func (t AliasTable) Override(overrides map[string][]string) AliasTable {
	out := make(AliasTable, 0, len(t)+len(overrides))
	seen := make(map[string]bool, len(t))
	for _, e := range t {
		seen[e.Field] = true
		if a, ok := overrides[e.Field]; ok && len(a) > 0 {
			e.Aliases = append([]string(nil), a...)
		} else {
			e.Aliases = append([]string(nil), e.Aliases...)
		}
		out = append(out, e)
	}
	var extra []string
	for f, a := range overrides {
		if !seen[f] && len(a) > 0 {
			extra = append(extra, f)
		}
	}
	slices.Sort(extra)
	for _, f := range extra {
		out = append(out, Entry{Field: f, Aliases: append([]string(nil), overrides[f]...)})
	}
	return out
}

// Fields lists the canonical field names in table order.
func (t AliasTable) Fields() []string {
	out := make([]string, len(t))
	for i, e := range t {
		out[i] = e.Field
	}
	return out
}
