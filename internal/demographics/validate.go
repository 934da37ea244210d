package demographics

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Report is the outcome of validating one input file.
type Report struct {
	Source   string
	Rows     int
	Problems []Issue
	Summary  Summary
}

// Valid reports whether no problems were found.
func (r Report) Valid() bool { return len(r.Problems) == 0 }

// Summary describes a population table.
type Summary struct {
	Provinces           int
	Districts           int
	Communes            int
	YearMin, YearMax    int
	PopulationMin       int
	PopulationMax       int
	CommunesPerDistrict []DistrictCount
}

// DistrictCount is the number of distinct communes in a district.
type DistrictCount struct {
	District string
	Communes int
}

// ValidateFile checks a CSV file without stopping at the first problem.
// The error return is reserved for unreadable files.
func ValidateFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open demographics: %w", err)
	}
	defer f.Close()
	return Validate(f, path)
}

// Validate checks CSV from r: required columns, missing or non-numeric
// counts, negative counts and women_15_49 + children_under_5 exceeding
// total_population.
func Validate(r io.Reader, source string) (Report, error) {
	rep := Report{Source: source}
	rows, issues, err := parse(r, source)
	if err != nil {
		if ie, ok := err.(*InputError); ok {
			rep.Problems = ie.Issues
			return rep, nil
		}
		return rep, err
	}
	rep.Rows = len(rows) + countLines(issues)
	rep.Problems = append(rep.Problems, issues...)

	for _, row := range rows {
		if err := row.Check(); err != nil {
			rep.Problems = append(rep.Problems, err.(*InputError).Issues...)
			continue
		}
		if row.Women15to49+row.ChildrenUnder5 > row.TotalPopulation {
			rep.Problems = append(rep.Problems, Issue{
				Line:    row.Line,
				Commune: row.Commune,
				Message: fmt.Sprintf("women_15_49 + children_under_5 exceeds total_population (%d + %d > %d, year %d)",
					row.Women15to49, row.ChildrenUnder5, row.TotalPopulation, row.Year),
			})
		}
	}
	sort.SliceStable(rep.Problems, func(i, j int) bool { return rep.Problems[i].Line < rep.Problems[j].Line })
	rep.Summary = Summarize(rows)
	return rep, nil
}

// Summarize computes the descriptive statistics of a table.
func Summarize(rows []Row) Summary {
	var s Summary
	if len(rows) == 0 {
		return s
	}
	provinces := map[string]struct{}{}
	districts := map[string]map[string]struct{}{}
	communes := map[string]struct{}{}
	s.YearMin, s.YearMax = rows[0].Year, rows[0].Year
	s.PopulationMin, s.PopulationMax = rows[0].TotalPopulation, rows[0].TotalPopulation
	for _, r := range rows {
		provinces[r.Province] = struct{}{}
		communes[r.Commune] = struct{}{}
		if districts[r.District] == nil {
			districts[r.District] = map[string]struct{}{}
		}
		districts[r.District][r.Commune] = struct{}{}
		s.YearMin = min(s.YearMin, r.Year)
		s.YearMax = max(s.YearMax, r.Year)
		s.PopulationMin = min(s.PopulationMin, r.TotalPopulation)
		s.PopulationMax = max(s.PopulationMax, r.TotalPopulation)
	}
	s.Provinces = len(provinces)
	s.Districts = len(districts)
	s.Communes = len(communes)
	for d, cs := range districts {
		s.CommunesPerDistrict = append(s.CommunesPerDistrict, DistrictCount{District: d, Communes: len(cs)})
	}
	sort.Slice(s.CommunesPerDistrict, func(i, j int) bool {
		a, b := s.CommunesPerDistrict[i], s.CommunesPerDistrict[j]
		if a.Communes != b.Communes {
			return a.Communes > b.Communes
		}
		return a.District < b.District
	})
	return s
}

func countLines(issues []Issue) int {
	lines := map[int]struct{}{}
	for _, i := range issues {
		if i.Line > 0 {
			lines[i.Line] = struct{}{}
		}
	}
	return len(lines)
}
