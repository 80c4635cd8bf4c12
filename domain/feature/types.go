package feature

import (
	"math"
	"sort"

	"stabcast/domain/core"
)

// EngineeredRecord is one supervised-learning row derived from a country's
// observation window. Only rows with a defined stability target survive
// derivation; feature values may still be NaN (missing) and are left for the
// preprocessing stage to impute. Records are recomputed every run and never
// mutated after creation.
type EngineeredRecord struct {
	Country core.CountryCode `json:"country_code"`
	Year    core.Year        `json:"year"`

	// Target: inverse coefficient of variation of GDP growth over the
	// trailing window. Higher = more stable growth.
	Target float64 `json:"growth_stability_target"`

	// Features keyed by engineered column name; NaN marks missing.
	Features map[core.FeatureKey]float64 `json:"features"`
}

// Key returns the (country, year) identity of the record
func (r EngineeredRecord) Key() string {
	return string(r.Country) + "/" + r.Year.String()
}

// Feature returns a feature value, NaN if absent
func (r EngineeredRecord) Feature(key core.FeatureKey) float64 {
	if v, ok := r.Features[key]; ok {
		return v
	}
	return math.NaN()
}

// ColumnMeta describes one column of the assembled feature matrix
type ColumnMeta struct {
	Key    core.FeatureKey `json:"key"`
	Family ColumnFamily    `json:"family"`
}

// ColumnFamily groups engineered columns by how they were derived
type ColumnFamily string

const (
	FamilyLag        ColumnFamily = "lag"
	FamilyMomentum   ColumnFamily = "momentum"
	FamilyRolling    ColumnFamily = "rolling"
	FamilyShock      ColumnFamily = "shock"
	FamilyComplexity ColumnFamily = "complexity"
)

// Matrix is the dense numeric view of a record set: rows are records in a
// fixed order, columns follow Columns. NaN marks missing cells.
type Matrix struct {
	Data    [][]float64  `json:"data"`
	Target  []float64    `json:"target"`
	RowKeys []string     `json:"row_keys"`
	Years   []core.Year  `json:"years"`
	Columns []ColumnMeta `json:"columns"`

	// Fingerprint over row keys and column order, for run audits.
	Fingerprint core.MatrixHash `json:"fingerprint"`
}

// NumRows returns the row count
func (m *Matrix) NumRows() int { return len(m.Data) }

// NumCols returns the column count
func (m *Matrix) NumCols() int { return len(m.Columns) }

// ColumnKeys returns the ordered engineered column names
func (m *Matrix) ColumnKeys() []core.FeatureKey {
	keys := make([]core.FeatureKey, len(m.Columns))
	for i, c := range m.Columns {
		keys[i] = c.Key
	}
	return keys
}

// SelectRows returns a new Matrix holding copies of the chosen rows.
// The receiver is not modified; workers get immutable views.
func (m *Matrix) SelectRows(idx []int) *Matrix {
	out := &Matrix{
		Data:    make([][]float64, len(idx)),
		Target:  make([]float64, len(idx)),
		RowKeys: make([]string, len(idx)),
		Years:   make([]core.Year, len(idx)),
		Columns: m.Columns,
	}
	for i, r := range idx {
		row := make([]float64, len(m.Data[r]))
		copy(row, m.Data[r])
		out.Data[i] = row
		out.Target[i] = m.Target[r]
		out.RowKeys[i] = m.RowKeys[r]
		out.Years[i] = m.Years[r]
	}
	out.Fingerprint = core.ComputeMatrixHash(out.RowKeys, columnNames(out.Columns))
	return out
}

// Assemble builds a Matrix from engineered records with a deterministic
// row order (country, then year) and the given column order.
func Assemble(records []EngineeredRecord, columns []ColumnMeta) *Matrix {
	sorted := make([]EngineeredRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Country != sorted[j].Country {
			return sorted[i].Country < sorted[j].Country
		}
		return sorted[i].Year < sorted[j].Year
	})

	m := &Matrix{
		Data:    make([][]float64, len(sorted)),
		Target:  make([]float64, len(sorted)),
		RowKeys: make([]string, len(sorted)),
		Years:   make([]core.Year, len(sorted)),
		Columns: columns,
	}
	for i, rec := range sorted {
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = rec.Feature(col.Key)
		}
		m.Data[i] = row
		m.Target[i] = rec.Target
		m.RowKeys[i] = rec.Key()
		m.Years[i] = rec.Year
	}
	m.Fingerprint = core.ComputeMatrixHash(m.RowKeys, columnNames(columns))
	return m
}

func columnNames(cols []ColumnMeta) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c.Key)
	}
	return names
}
