package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	goio "io"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/idlab-discover/mchsim-cli/internal/simulation"
)

// RecordColumns is the CSV header of exported records.
var RecordColumns = []string{
	"scenario", "commune", "province", "week",
	"anc_coverage", "skilled_birth_attendance", "immunization_coverage",
	"digital_engagement", "care_seeking_delays",
}

// WriteRecords writes records to path. The format parameter can be "csv",
// "json", "yaml" or "auto" (default), which selects by extension and falls
// back to CSV.
func WriteRecords(records []simulation.Record, path string, format string) error {
	actual, err := resolveFormat(path, format, FormatCSV, true, RecordFormats)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeRecords(f, records, actual); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadRecords reads records written by WriteRecords.
func ReadRecords(path string, format string) ([]simulation.Record, error) {
	actual, err := resolveFormat(path, format, FormatCSV, false, RecordFormats)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeRecords(f, actual)
}

// EncodeRecords writes records to w in the given concrete format.
func EncodeRecords(w goio.Writer, records []simulation.Record, format Format) error {
	switch format {
	case FormatCSV:
		return encodeCSV(w, records)
	case FormatJSON:
		if records == nil {
			records = []simulation.Record{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported record format: %q", format)
}

// DecodeRecords reads records from r in the given concrete format.
func DecodeRecords(r goio.Reader, format Format) ([]simulation.Record, error) {
	var out []simulation.Record
	switch format {
	case FormatCSV:
		return decodeCSV(r)
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode json records: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&out); err != nil && !errors.Is(err, goio.EOF) {
			return nil, fmt.Errorf("decode yaml records: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported record format: %q", format)
	}
	return out, nil
}

func encodeCSV(w goio.Writer, records []simulation.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordColumns); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, r := range records {
		row := []string{
			r.Scenario, r.Commune, r.Province, strconv.Itoa(r.Week),
			f(r.ANCCoverage), f(r.SkilledBirthAttendance), f(r.ImmunizationCoverage),
			f(r.DigitalEngagement), strconv.Itoa(r.CareSeekingDelays),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func decodeCSV(r goio.Reader) ([]simulation.Record, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, goio.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, c := range RecordColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("records csv: missing column %q", c)
		}
	}

	var out []simulation.Record
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, goio.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		p := &cellParser{rec: rec, cols: cols, line: line}
		out = append(out, simulation.Record{
			Scenario:               p.str("scenario"),
			Commune:                p.str("commune"),
			Province:               p.str("province"),
			Week:                   p.integer("week"),
			ANCCoverage:            p.number("anc_coverage"),
			SkilledBirthAttendance: p.number("skilled_birth_attendance"),
			ImmunizationCoverage:   p.number("immunization_coverage"),
			DigitalEngagement:      p.number("digital_engagement"),
			CareSeekingDelays:      p.integer("care_seeking_delays"),
		})
		if p.err != nil {
			return nil, p.err
		}
	}
	return out, nil
}

// cellParser keeps the first conversion error of a row.
type cellParser struct {
	rec  []string
	cols map[string]int
	line int
	err  error
}

func (p *cellParser) str(col string) string {
	i := p.cols[col]
	if i >= len(p.rec) {
		return ""
	}
	return p.rec[i]
}

func (p *cellParser) integer(col string) int {
	v, err := strconv.Atoi(strings.TrimSpace(p.str(col)))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("records csv line %d: %s: %w", p.line, col, err)
	}
	return v
}

func (p *cellParser) number(col string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(p.str(col)), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("records csv line %d: %s: %w", p.line, col, err)
	}
	return v
}
