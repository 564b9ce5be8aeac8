// Package period parses the analysis-period argument into target years
// and a catalog fetch window.
package period

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is a parsed analysis period: the explicit target years plus the
// inclusive date window derived from them.
type Period struct {
	Years []int  `json:"years"`
	From  string `json:"from"`  // YYYY-01-01 of the earliest year
	Until string `json:"until"` // YYYY-12-31 of the latest year
}

// Contains reports whether year is one of the period's target years.
func (p Period) Contains(year int) bool {
	for _, y := range p.Years {
		if y == year {
			return true
		}
	}
	return false
}

// String renders the period the way it was specified.
func (p Period) String() string {
	if len(p.Years) == 0 {
		return ""
	}
	parts := make([]string, len(p.Years))
	for i, y := range p.Years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}

// Parse accepts the three supported period forms:
//
//	"2020-2023"      inclusive year range
//	"2020,2021,2023" explicit year list; gaps stay excluded
//	"2021"           single year
//
// The fetch window always spans the minimum through the maximum listed
// year, even when the list form skips years in between.
func Parse(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Period{}, fmt.Errorf("empty period")
	}

	switch {
	case strings.Contains(s, "-"):
		first, second, _ := strings.Cut(s, "-")
		from, err := parseYear(first)
		if err != nil {
			return Period{}, err
		}
		to, err := parseYear(second)
		if err != nil {
			return Period{}, err
		}
		if to < from {
			return Period{}, fmt.Errorf("period range %q ends before it starts", s)
		}
		years := make([]int, 0, to-from+1)
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
		return build(years), nil

	case strings.Contains(s, ","):
		var years []int
		for _, part := range strings.Split(s, ",") {
			y, err := parseYear(part)
			if err != nil {
				return Period{}, err
			}
			years = append(years, y)
		}
		return build(years), nil

	default:
		y, err := parseYear(s)
		if err != nil {
			return Period{}, err
		}
		return build([]int{y}), nil
	}
}

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	y, err := strconv.Atoi(s)
	if err != nil || y < 1000 || y > 9999 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

func build(years []int) Period {
	lo, hi := years[0], years[0]
	for _, y := range years[1:] {
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	return Period{
		Years: years,
		From:  fmt.Sprintf("%d-01-01", lo),
		Until: fmt.Sprintf("%d-12-31", hi),
	}
}
