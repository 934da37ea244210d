package demographics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads and strictly checks one or more CSV files, concatenated in
// argument order. Any malformed or missing value yields an *InputError.
func Load(paths ...string) ([]Row, error) {
	if len(paths) == 0 {
		return nil, errors.New("no demographic input files given")
	}
	var all []Row
	for _, p := range paths {
		rows, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}
	return all, nil
}

// LoadFile reads one CSV file strictly.
func LoadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demographics: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses CSV from r strictly. source names r in error messages.
func Read(r io.Reader, source string) ([]Row, error) {
	rows, issues, err := parse(r, source)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, &InputError{Source: source, Issues: issues}
	}
	for _, row := range rows {
		if err := row.Check(); err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, &InputError{Source: source, Issues: []Issue{{Message: "no data rows"}}}
	}
	return rows, nil
}

// parse decodes every row it can and collects per-cell problems. The error
// return is reserved for structural failures: unreadable CSV or missing
// required columns.
func parse(r io.Reader, source string) ([]Row, []Issue, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &InputError{Source: source, Issues: []Issue{{Message: "empty file"}}}
		}
		return nil, nil, fmt.Errorf("read %s header: %w", source, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &InputError{Source: source, Issues: []Issue{{
			Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}}}
	}

	var (
		rows   []Row
		issues []Issue
	)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", source, err)
		}
		if blank(rec) {
			continue
		}
		cell := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}

		row := Row{
			Province:   cell(ColProvince),
			District:   cell(ColDistrict),
			Commune:    cell(ColCommune),
			AdminLevel: cell(ColAdminLevel),
			Source:     source,
			Line:       line,
		}
		bad := false
		for _, f := range []struct {
			col string
			dst *int
		}{
			{ColYear, &row.Year},
			{ColTotalPopulation, &row.TotalPopulation},
			{ColWomen15to49, &row.Women15to49},
			{ColChildrenUnder5, &row.ChildrenUnder5},
		} {
			v, msg := parseCount(cell(f.col))
			if msg != "" {
				issues = append(issues, Issue{Line: line, Column: f.col, Commune: row.Commune, Message: msg})
				bad = true
				continue
			}
			*f.dst = v
		}
		if row.Commune == "" {
			issues = append(issues, Issue{Line: line, Column: ColCommune, Message: "missing value"})
			bad = true
		}
		if !bad {
			rows = append(rows, row)
		}
	}
	return rows, issues, nil
}

// parseCount accepts integers and integral floats ("1200.0"), which
// spreadsheet exports commonly produce.
func parseCount(s string) (int, string) {
	if s == "" {
		return 0, "missing value"
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Sprintf("not a number: %q", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Sprintf("not a whole number: %q", s)
	}
	return int(f), ""
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
