package store

import (
	"fmt"
	"time"

	"github.com/richard-senior/podds/pkg/engine"
)

// HistoryMatch is one completed match as fetched from the datasource.
// Rows are keyed by team pairing and date so refetches overwrite rather
// than duplicate.
type HistoryMatch struct {
	HomeID   string `column:"homeid" dbtype:"TEXT" primary:"true" index:"true" json:"homeId"`
	AwayID   string `column:"awayid" dbtype:"TEXT" primary:"true" index:"true" json:"awayId"`
	Played   string `column:"played" dbtype:"TEXT" primary:"true" json:"played"`
	HomeName string `column:"homename" dbtype:"TEXT" json:"homeName"`
	AwayName string `column:"awayname" dbtype:"TEXT" json:"awayName"`

	HomeGoals         int  `column:"homegoals" dbtype:"INTEGER" json:"homeGoals"`
	AwayGoals         int  `column:"awaygoals" dbtype:"INTEGER" json:"awayGoals"`
	HalfTimeHomeGoals int  `column:"hthomegoals" dbtype:"INTEGER" json:"halfTimeHomeGoals"`
	HalfTimeAwayGoals int  `column:"htawaygoals" dbtype:"INTEGER" json:"halfTimeAwayGoals"`
	IsCup             bool `column:"iscup" dbtype:"INTEGER" json:"isCup"`
}

func (h *HistoryMatch) GetTableName() string { return "history" }

func (h *HistoryMatch) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"homeid": h.HomeID,
		"awayid": h.AwayID,
		"played": h.Played,
	}
}

func (h *HistoryMatch) BeforeSave() error {
	if h.HomeID == "" || h.AwayID == "" {
		return fmt.Errorf("history match requires both team ids")
	}
	if _, err := h.playedTime(); err != nil {
		return fmt.Errorf("history match %s v %s: %w", h.HomeID, h.AwayID, err)
	}
	rec := h.ToRecord()
	return rec.Validate()
}

func (h *HistoryMatch) AfterSave() error { return nil }

func (h *HistoryMatch) playedTime() (time.Time, error) {
	if h.Played == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, h.Played)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad played date %q: %w", h.Played, err)
	}
	return t, nil
}

// ToRecord converts the row to the engine's input type. An unparsable
// date comes through as the zero time, which the engine treats as
// undated.
func (h *HistoryMatch) ToRecord() engine.MatchRecord {
	played, _ := h.playedTime()
	return engine.MatchRecord{
		HomeID:            h.HomeID,
		HomeName:          h.HomeName,
		AwayID:            h.AwayID,
		AwayName:          h.AwayName,
		HomeGoals:         h.HomeGoals,
		AwayGoals:         h.AwayGoals,
		HalfTimeHomeGoals: h.HalfTimeHomeGoals,
		HalfTimeAwayGoals: h.HalfTimeAwayGoals,
		Date:              played,
		IsCup:             h.IsCup,
	}
}

// FromRecord builds a storable row from an engine record
func FromRecord(m engine.MatchRecord) *HistoryMatch {
	h := &HistoryMatch{
		HomeID:            m.HomeID,
		AwayID:            m.AwayID,
		HomeName:          m.HomeName,
		AwayName:          m.AwayName,
		HomeGoals:         m.HomeGoals,
		AwayGoals:         m.AwayGoals,
		HalfTimeHomeGoals: m.HalfTimeHomeGoals,
		HalfTimeAwayGoals: m.HalfTimeAwayGoals,
		IsCup:             m.IsCup,
	}
	if !m.Date.IsZero() {
		h.Played = m.Date.UTC().Format(time.RFC3339)
	}
	return h
}

// HistoryForTeams loads every stored match involving either team and
// returns engine records
func HistoryForTeams(homeID, awayID string) ([]engine.MatchRecord, error) {
	rows, err := FindWhere(&HistoryMatch{},
		"homeid IN (?, ?) OR awayid IN (?, ?)", homeID, awayID, homeID, awayID)
	if err != nil {
		return nil, err
	}
	records := make([]engine.MatchRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.(*HistoryMatch).ToRecord())
	}
	return records, nil
}
