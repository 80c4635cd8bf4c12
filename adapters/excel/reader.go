// Package excel reads panel files into raw observations. Both .xlsx and
// .csv are handled by the same reader; the rest of the pipeline never knows
// which format supplied the rows.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"stabcast/domain/core"
	"stabcast/domain/panel"
	"stabcast/internal"
)

// Column headers the reader recognizes for row identity
const (
	headerCountry = "country_code"
	headerYear    = "year"
	headerEra     = "era"
)

// PanelReader implements ports.PanelSource over an xlsx or csv file. Excel
// files are read from Sheet1. Indicator columns may use either the internal
// snake_case names or provider codes (ProviderColumnMap standardizes them);
// unknown headers pass through lowercased.
type PanelReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      *internal.Logger
}

// NewPanelReader creates a reader for the given file, inferring the format
// from the extension.
func NewPanelReader(filePath string, log *internal.Logger) *PanelReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	return &PanelReader{filePath: filePath, fileType: fileType, log: log}
}

// ReadObservations reads every data row. Malformed identity cells are a data
// integrity error; an unparseable indicator cell is treated as missing.
func (r *PanelReader) ReadObservations(ctx context.Context) ([]panel.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("panel file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	case "xlsx":
		rows, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported panel file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: panel file needs a header row and at least one data row", core.ErrMalformedRow)
	}

	return r.parseRows(rows)
}

func (r *PanelReader) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	r.log.Debug("read %d rows from %s", len(rows), r.filePath)
	return rows, nil
}

func (r *PanelReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.log.Debug("read %d rows from %s", len(rows), r.filePath)
	return rows, nil
}

// parseRows converts string cells into typed observations. Header position
// is resolved once; each data row then maps indicator cells by column index.
func (r *PanelReader) parseRows(rows [][]string) ([]panel.Observation, error) {
	header := rows[0]
	countryCol, yearCol, eraCol := -1, -1, -1
	indicatorCols := make(map[int]core.FeatureKey)

	for j, raw := range header {
		name := strings.TrimSpace(raw)
		switch strings.ToLower(name) {
		case headerCountry, "country":
			countryCol = j
		case headerYear:
			yearCol = j
		case headerEra:
			eraCol = j
		default:
			indicatorCols[j] = standardizeHeader(name)
		}
	}
	if countryCol < 0 || yearCol < 0 {
		return nil, fmt.Errorf("%w: panel file missing %s or %s column", core.ErrMalformedRow, headerCountry, headerYear)
	}

	observations := make([]panel.Observation, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}
		obs, err := r.parseRow(row, i+1, countryCol, yearCol, eraCol, indicatorCols)
		if err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}

	r.log.Info("parsed %d observations from %s (%d indicator columns)", len(observations), r.filePath, len(indicatorCols))
	return observations, nil
}

func (r *PanelReader) parseRow(row []string, line, countryCol, yearCol, eraCol int, indicatorCols map[int]core.FeatureKey) (panel.Observation, error) {
	country, err := core.ParseCountryCode(cell(row, countryCol))
	if err != nil {
		return panel.Observation{}, fmt.Errorf("%w: line %d: %v", core.ErrMalformedRow, line, err)
	}
	yearVal, err := strconv.Atoi(strings.TrimSpace(cell(row, yearCol)))
	if err != nil {
		return panel.Observation{}, fmt.Errorf("%w: line %d: invalid year %q", core.ErrMalformedRow, line, cell(row, yearCol))
	}

	obs := panel.Observation{
		Country:    country,
		Year:       core.Year(yearVal),
		Indicators: make(map[core.FeatureKey]float64, len(indicatorCols)),
	}
	if eraCol >= 0 {
		obs.Era = strings.TrimSpace(cell(row, eraCol))
	}

	for j, key := range indicatorCols {
		raw := strings.TrimSpace(cell(row, j))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// non-numeric indicator cell is missing, not fatal
			r.log.Debug("line %d: skipping non-numeric %s value %q", line, key, raw)
			continue
		}
		obs.Indicators[key] = v
	}
	return obs, nil
}

// standardizeHeader maps provider column codes onto the indicator
// vocabulary; anything unknown passes through lowercased.
func standardizeHeader(name string) core.FeatureKey {
	if key, ok := panel.ProviderColumnMap[name]; ok {
		return key
	}
	return core.FeatureKey(strings.ToLower(name))
}

func cell(row []string, j int) string {
	if j < 0 || j >= len(row) {
		return ""
	}
	return row[j]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
