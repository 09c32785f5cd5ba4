package util

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DecisionDateLayout matches "15.08.2024" and also "5.8.2024".
	DecisionDateLayout = "2.1.2006"
	// DecisionDateOutputLayout renders a date the way the index writes it.
	DecisionDateOutputLayout = "02.01.2006"
	// FlagDateLayout is used for filter bounds given on the command line or in config.
	FlagDateLayout = "2006-01-02"
)

// ParseDecisionDate parses a DD.MM.YYYY cell into a UTC calendar date.
func ParseDecisionDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	t, err := time.ParseInLocation(DecisionDateLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse decision date '%s': %w", s, err)
	}
	return t, nil
}

// ParseFlagDate parses an optional YYYY-MM-DD bound. Empty input yields nil.
func ParseFlagDate(s string) (*time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(FlagDateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date '%s' (want YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}
