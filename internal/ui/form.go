package ui

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idlab-discover/mchsim-cli/internal/apperr"
)

// RunParameters are the values the parameter form edits.
type RunParameters struct {
	Weeks    int
	Seed     uint64
	Coverage float64
}

// RunParameterForm lets the user adjust weeks, seed and coverage before a
// run. p holds the defaults on entry and the accepted values on return.
func RunParameterForm(p *RunParameters) error {
	weeks := strconv.Itoa(p.Weeks)
	seed := strconv.FormatUint(p.Seed, 10)
	coverage := strconv.FormatFloat(p.Coverage, 'g', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Simulation Parameters").
				Description("Press enter to keep a value."),
			huh.NewInput().
				Title("Weeks").
				Description("Number of simulated weeks").
				Value(&weeks).
				Validate(func(s string) error { _, err := parseWeeks(s); return err }),
			huh.NewInput().
				Title("Seed").
				Description("Random seed; equal seeds reproduce a run").
				Value(&seed).
				Validate(func(s string) error { _, err := parseSeed(s); return err }),
			huh.NewInput().
				Title("Coverage").
				Description("Fraction of eligible agents targeted, 0 to 1").
				Value(&coverage).
				Validate(func(s string) error { _, err := parseCoverage(s); return err }),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return apperr.ErrCancelled
		}
		return err
	}

	// validated by the form
	p.Weeks, _ = parseWeeks(weeks)
	p.Seed, _ = parseSeed(seed)
	p.Coverage, _ = parseCoverage(coverage)
	return nil
}

// ConfirmOverwrite asks whether an existing file may be replaced.
func ConfirmOverwrite(path string) (bool, error) {
	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Overwrite file?").
				Description(path + " already exists.").
				Value(&confirm).
				Affirmative("Yes").
				Negative("No"),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, apperr.ErrCancelled
		}
		return false, err
	}
	return confirm, nil
}

func parseWeeks(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("weeks must be a positive whole number")
	}
	return n, nil
}

func parseSeed(s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("seed must be a non-negative whole number")
	}
	return n, nil
}

func parseCoverage(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("coverage must be a number between 0 and 1")
	}
	return f, nil
}
