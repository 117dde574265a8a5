package annotation

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// Report is the merged annotation table.
type Report struct {
	// Features lists the reported features in output order.
	Features []FeatureID
	// Columns is the sorted union of qualifier names across all features.
	Columns []string
	// Values holds the qualifiers of each feature in Features.
	Values map[FeatureID]QualifierSet
}

func newReport(order []FeatureID, values map[FeatureID]QualifierSet) *Report {
	names := make(map[string]struct{})
	for _, id := range order {
		for name := range values[id] {
			names[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(names))
	for name := range names {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	kept := make(map[FeatureID]QualifierSet, len(order))
	for _, id := range order {
		kept[id] = values[id]
	}

	return &Report{Features: order, Columns: columns, Values: kept}
}

// Header returns the CSV header row.
func (r *Report) Header() []string {
	return append([]string{FeatureColumn}, r.Columns...)
}

// Row returns the CSV row for id. Missing qualifiers are empty cells.
func (r *Report) Row(id FeatureID) []string {
	qs := r.Values[id]
	row := make([]string, 0, len(r.Columns)+1)
	row = append(row, id.String())
	for _, name := range r.Columns {
		row = append(row, qs[name])
	}
	return row
}

// WriteCSV writes the header and one row per feature to w.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(r.Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, id := range r.Features {
		if err := cw.Write(r.Row(id)); err != nil {
			return fmt.Errorf("write row %s: %w", id, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
