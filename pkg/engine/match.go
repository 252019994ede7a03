package engine

import (
	"fmt"
	"sort"
	"time"
)

// MatchRecord is one historical result as supplied by the data layer.
// Records are immutable facts; the engine never mutates them.
type MatchRecord struct {
	HomeID   string    `json:"homeId"`
	HomeName string    `json:"homeName"`
	AwayID   string    `json:"awayId"`
	AwayName string    `json:"awayName"`

	HomeGoals         int `json:"homeGoals"`
	AwayGoals         int `json:"awayGoals"`
	HalfTimeHomeGoals int `json:"halfTimeHomeGoals"`
	HalfTimeAwayGoals int `json:"halfTimeAwayGoals"`

	Date  time.Time `json:"date"`
	IsCup bool      `json:"isCup"`
}

// Validate checks the record against its documented contract.
// Malformed scores are an input-validation fault, never silently coerced.
func (m *MatchRecord) Validate() error {
	if m.HomeGoals < 0 || m.AwayGoals < 0 {
		return fmt.Errorf("negative full-time score %d-%d for %s vs %s",
			m.HomeGoals, m.AwayGoals, m.HomeName, m.AwayName)
	}
	if m.HalfTimeHomeGoals < 0 || m.HalfTimeAwayGoals < 0 {
		return fmt.Errorf("negative half-time score %d-%d for %s vs %s",
			m.HalfTimeHomeGoals, m.HalfTimeAwayGoals, m.HomeName, m.AwayName)
	}
	if m.HalfTimeHomeGoals > m.HomeGoals || m.HalfTimeAwayGoals > m.AwayGoals {
		return fmt.Errorf("half-time score %d-%d exceeds full-time score %d-%d for %s vs %s",
			m.HalfTimeHomeGoals, m.HalfTimeAwayGoals, m.HomeGoals, m.AwayGoals, m.HomeName, m.AwayName)
	}
	return nil
}

// HasDate reports whether the record carries a usable match date.
// Records without one are excluded from time-weighted computations.
func (m *MatchRecord) HasDate() bool {
	return !m.Date.IsZero()
}

// Involves reports whether the given team took part in this match
func (m *MatchRecord) Involves(teamID string) bool {
	return m.HomeID == teamID || m.AwayID == teamID
}

// OpponentOf returns the opposing team's id, or "" if the team did not play
func (m *MatchRecord) OpponentOf(teamID string) string {
	switch teamID {
	case m.HomeID:
		return m.AwayID
	case m.AwayID:
		return m.HomeID
	}
	return ""
}

// PlayedAtHome reports whether the given team was the home side
func (m *MatchRecord) PlayedAtHome(teamID string) bool {
	return m.HomeID == teamID
}

// GoalsFor returns (scored, conceded) from the given team's perspective
func (m *MatchRecord) GoalsFor(teamID string) (int, int) {
	if m.PlayedAtHome(teamID) {
		return m.HomeGoals, m.AwayGoals
	}
	return m.AwayGoals, m.HomeGoals
}

// HalfTimeGoalsFor returns the half-time (scored, conceded) from the given team's perspective
func (m *MatchRecord) HalfTimeGoalsFor(teamID string) (int, int) {
	if m.PlayedAtHome(teamID) {
		return m.HalfTimeHomeGoals, m.HalfTimeAwayGoals
	}
	return m.HalfTimeAwayGoals, m.HalfTimeHomeGoals
}

// ResultPoint scores the full-time result from the given team's perspective:
// 1.0 win, 0.5 draw, 0.0 loss
func (m *MatchRecord) ResultPoint(teamID string) float64 {
	scored, conceded := m.GoalsFor(teamID)
	return resultPoint(scored, conceded)
}

func resultPoint(scored, conceded int) float64 {
	switch {
	case scored > conceded:
		return 1.0
	case scored == conceded:
		return 0.5
	default:
		return 0.0
	}
}

// SortByDate returns a copy of the records sorted chronologically.
// The rating replay depends on date order; the input slice is left untouched.
func SortByDate(records []MatchRecord) []MatchRecord {
	sorted := make([]MatchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// ValidateRecords checks a whole history, returning the first contract violation
func ValidateRecords(records []MatchRecord) error {
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
