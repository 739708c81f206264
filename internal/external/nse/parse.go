package nse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/adityavk/nsescreener/internal/contracts"
)

// ParseMasterCSV parses an NSE equity list CSV into symbols. The
// archives are inconsistent about header spelling and padding, so
// columns are located by normalized header name rather than position.
// Rows without a symbol or series are dropped; duplicate symbols keep
// the first occurrence.
func ParseMasterCSV(data []byte) ([]contracts.Symbol, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	symbolIdx, seriesIdx, nameIdx := -1, -1, -1
	for i, header := range records[0] {
		switch normalizeHeader(header) {
		case "symbol":
			symbolIdx = i
		case "series":
			seriesIdx = i
		case "nameofcompany", "securityname":
			nameIdx = i
		}
	}
	if symbolIdx < 0 || seriesIdx < 0 {
		return nil, fmt.Errorf("csv missing symbol/series columns")
	}

	seen := make(map[string]struct{}, len(records))
	symbols := make([]contracts.Symbol, 0, len(records)-1)

	for _, row := range records[1:] {
		if len(row) <= symbolIdx || len(row) <= seriesIdx {
			continue
		}

		ticker := strings.TrimSpace(row[symbolIdx])
		series := strings.ToUpper(strings.TrimSpace(row[seriesIdx]))
		if ticker == "" || series == "" {
			continue
		}

		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		sym := contracts.Symbol{
			Ticker: ticker,
			Series: series,
		}
		if nameIdx >= 0 && len(row) > nameIdx {
			sym.Name = strings.TrimSpace(row[nameIdx])
		}

		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// normalizeHeader lowercases a header and strips spaces and underscores
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}
