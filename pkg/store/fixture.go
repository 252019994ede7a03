package store

import (
	"fmt"
	"time"

	"github.com/richard-senior/podds/pkg/engine"
)

// Fixture is an upcoming match in a betting period together with the
// engine's stored prediction for it. Unpredicted numeric columns hold -1.
type Fixture struct {
	Period    string `column:"period" dbtype:"TEXT" primary:"true" json:"period"`
	FixtureID string `column:"fixtureid" dbtype:"TEXT" primary:"true" json:"fixtureId"`
	HomeID    string `column:"homeid" dbtype:"TEXT" index:"true" json:"homeId"`
	AwayID    string `column:"awayid" dbtype:"TEXT" index:"true" json:"awayId"`
	HomeName  string `column:"homename" dbtype:"TEXT" json:"homeName"`
	AwayName  string `column:"awayname" dbtype:"TEXT" json:"awayName"`
	KickOff   string `column:"kickoff" dbtype:"TEXT" json:"kickOff"`
	IsCup     bool   `column:"iscup" dbtype:"INTEGER" json:"isCup"`

	HomeWinProbability float64 `column:"homewinprob" dbtype:"REAL" json:"homeWinProbability"`
	DrawProbability    float64 `column:"drawprob" dbtype:"REAL" json:"drawProbability"`
	AwayWinProbability float64 `column:"awaywinprob" dbtype:"REAL" json:"awayWinProbability"`

	ExpectedHomeGoals float64 `column:"exphomegoals" dbtype:"REAL" json:"expectedHomeGoals"`
	ExpectedAwayGoals float64 `column:"expawaygoals" dbtype:"REAL" json:"expectedAwayGoals"`
	LikelyHomeGoals   int     `column:"likelyhomegoals" dbtype:"INTEGER" json:"likelyHomeGoals"`
	LikelyAwayGoals   int     `column:"likelyawaygoals" dbtype:"INTEGER" json:"likelyAwayGoals"`

	PredictedAt string `column:"predictedat" dbtype:"TEXT" json:"predictedAt,omitempty"`
}

// NewFixture returns a fixture with the prediction columns at their
// unset sentinel
func NewFixture(period, fixtureID, homeID, awayID string) *Fixture {
	return &Fixture{
		Period:             period,
		FixtureID:          fixtureID,
		HomeID:             homeID,
		AwayID:             awayID,
		HomeWinProbability: -1,
		DrawProbability:    -1,
		AwayWinProbability: -1,
		ExpectedHomeGoals:  -1,
		ExpectedAwayGoals:  -1,
		LikelyHomeGoals:    -1,
		LikelyAwayGoals:    -1,
	}
}

func (f *Fixture) GetTableName() string { return "fixtures" }

func (f *Fixture) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"period":    f.Period,
		"fixtureid": f.FixtureID,
	}
}

func (f *Fixture) BeforeSave() error {
	if f.Period == "" || f.FixtureID == "" {
		return fmt.Errorf("fixture requires period and fixture id")
	}
	if f.HomeID == "" || f.AwayID == "" {
		return fmt.Errorf("fixture %s requires both team ids", f.FixtureID)
	}
	return nil
}

func (f *Fixture) AfterSave() error { return nil }

// IsPredicted reports whether the prediction columns have been filled
func (f *Fixture) IsPredicted() bool {
	return f.HomeWinProbability >= 0 && f.DrawProbability >= 0 && f.AwayWinProbability >= 0
}

// ApplyPrediction copies an engine prediction into the fixture's columns
func (f *Fixture) ApplyPrediction(p *engine.Prediction) {
	f.HomeWinProbability = p.Outcome.HomeWin
	f.DrawProbability = p.Outcome.Draw
	f.AwayWinProbability = p.Outcome.AwayWin
	f.ExpectedHomeGoals = p.ExpectedHomeGoals
	f.ExpectedAwayGoals = p.ExpectedAwayGoals
	f.LikelyHomeGoals = p.LikelyHomeGoals
	f.LikelyAwayGoals = p.LikelyAwayGoals
	f.PredictedAt = time.Now().UTC().Format(time.RFC3339)
}

// FixturesForPeriod loads every stored fixture in a period
func FixturesForPeriod(period string) ([]*Fixture, error) {
	rows, err := FindWhere(&Fixture{}, "period = ?", period)
	if err != nil {
		return nil, err
	}
	fixtures := make([]*Fixture, 0, len(rows))
	for _, r := range rows {
		fixtures = append(fixtures, r.(*Fixture))
	}
	return fixtures, nil
}
