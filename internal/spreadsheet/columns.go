package spreadsheet

import (
	"math"
	"strconv"
	"strings"
)

// columnMap holds zero-based column positions discovered in the header
// row; -1 means the column is absent.
type columnMap struct {
	csiCode     int
	description int
	quantity    int
	unit        int
	unitRate    int
	notes       int
	boqItem     int
	boqDivision int
}

// discoverColumns matches headers by case-insensitive substring. The first
// matching header wins. "unit" skips the unit rate header so a sheet with
// "Unit Rate" before "Unit" still resolves both.
func discoverColumns(header []string) columnMap {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	find := func(match func(string) bool) int {
		for i, h := range lower {
			if h != "" && match(h) {
				return i
			}
		}
		return -1
	}

	contains := func(sub string) func(string) bool {
		return func(h string) bool { return strings.Contains(h, sub) }
	}

	return columnMap{
		csiCode:     find(contains("csi code")),
		description: find(contains("description")),
		quantity:    find(contains("quantity")),
		unit: find(func(h string) bool {
			return strings.Contains(h, "unit") && !strings.Contains(h, "rate")
		}),
		unitRate:    find(contains("unit rate")),
		notes:       find(contains("notes")),
		boqItem:     find(contains("boq item")),
		boqDivision: find(contains("boq division")),
	}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts plain numbers and numeric strings with thousands
// separators. Anything else is treated as unknown rather than an error.
func parseNumber(raw string) *float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

func parseYes(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1", "x":
		return true
	}
	return false
}
