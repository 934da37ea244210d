// Package demographics reads and checks the commune population tables that
// seed a simulation.
//
// Input is CSV with a header row. Required columns are province, district,
// commune, year, total_population, women_15_49 and children_under_5; an
// admin_level column is accepted and ignored. Column order is free.
package demographics

import (
	"fmt"
	"strings"
)

// Column names of the input contract.
const (
	ColProvince        = "province"
	ColDistrict        = "district"
	ColCommune         = "commune"
	ColYear            = "year"
	ColTotalPopulation = "total_population"
	ColWomen15to49     = "women_15_49"
	ColChildrenUnder5  = "children_under_5"
	ColAdminLevel      = "admin_level"
)

// RequiredColumns lists the columns every input file must carry.
var RequiredColumns = []string{
	ColProvince, ColDistrict, ColCommune, ColYear,
	ColTotalPopulation, ColWomen15to49, ColChildrenUnder5,
}

// Row is one commune-year of population data.
type Row struct {
	Province        string `json:"province" yaml:"province"`
	District        string `json:"district" yaml:"district"`
	Commune         string `json:"commune" yaml:"commune"`
	Year            int    `json:"year" yaml:"year"`
	TotalPopulation int    `json:"total_population" yaml:"total_population"`
	Women15to49     int    `json:"women_15_49" yaml:"women_15_49"`
	ChildrenUnder5  int    `json:"children_under_5" yaml:"children_under_5"`
	AdminLevel      string `json:"admin_level,omitempty" yaml:"admin_level,omitempty"`

	// Source and Line locate the row for error messages.
	Source string `json:"-" yaml:"-"`
	Line   int    `json:"-" yaml:"-"`
}

// Key identifies a commune independently of the year.
func (r Row) Key() string { return r.Province + "/" + r.Commune }

// Check reports counts that make a row unusable as a simulation seed.
func (r Row) Check() error {
	var issues []Issue
	counts := []struct {
		col string
		v   int
	}{
		{ColTotalPopulation, r.TotalPopulation},
		{ColWomen15to49, r.Women15to49},
		{ColChildrenUnder5, r.ChildrenUnder5},
	}
	for _, c := range counts {
		if c.v < 0 {
			issues = append(issues, Issue{Line: r.Line, Column: c.col, Commune: r.Commune, Message: fmt.Sprintf("negative value %d", c.v)})
		}
	}
	if strings.TrimSpace(r.Commune) == "" {
		issues = append(issues, Issue{Line: r.Line, Column: ColCommune, Message: "empty commune name"})
	}
	if len(issues) == 0 {
		return nil
	}
	return &InputError{Source: r.Source, Issues: issues}
}

// Latest keeps, for every (province, commune), the row with the greatest year.
// Output order follows the first appearance of each commune in rows.
func Latest(rows []Row) []Row {
	idx := make(map[string]int, len(rows))
	var out []Row
	for _, r := range rows {
		k := r.Key()
		i, seen := idx[k]
		if !seen {
			idx[k] = len(out)
			out = append(out, r)
			continue
		}
		if r.Year > out[i].Year {
			out[i] = r
		}
	}
	return out
}
