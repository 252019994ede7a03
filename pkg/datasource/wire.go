package datasource

import (
	"time"

	"github.com/richard-senior/podds/pkg/engine"
)

// infoResponse is the score feed's period/coupon envelope
type infoResponse struct {
	Data struct {
		CurrentPeriod string      `json:"curr_expect"`
		MatchList     []couponRow `json:"matchList"`
	} `json:"data"`
}

// couponRow is one fixture on the pool coupon
type couponRow struct {
	FID          string `json:"fid"`
	League       string `json:"simpleleague"`
	HomeName     string `json:"homesxname"`
	AwayName     string `json:"awaysxname"`
	HomeStanding string `json:"homestanding"`
	AwayStanding string `json:"awaystanding"`
	MatchTime    string `json:"matchtime"`
}

// baseInfoResponse carries the team ids for one fixture
type baseInfoResponse struct {
	Data struct {
		HomeID string `json:"homeid"`
		AwayID string `json:"awayid"`
	} `json:"data"`
}

// recordResponse is the recent-record envelope: each side's match list
type recordResponse struct {
	Data struct {
		Home struct {
			Matches []matchRow `json:"matches"`
		} `json:"home"`
		Away struct {
			Matches []matchRow `json:"matches"`
		} `json:"away"`
	} `json:"data"`
}

// matchRow is one completed match as the feed reports it. Teams are
// identified by short name throughout the feed's history payloads.
type matchRow struct {
	HomeName      string `json:"homesxname"`
	AwayName      string `json:"awaysxname"`
	HomeScore     int    `json:"homescore"`
	AwayScore     int    `json:"awayscore"`
	HomeHalfScore int    `json:"homehalfscore"`
	AwayHalfScore int    `json:"awayhalfscore"`
	MatchDate     string `json:"matchdate"`
	IsCup         int    `json:"iscup"`
}

// toRecord converts a feed row to the engine's input type. Short names
// double as team identifiers, matching how the feed keys its history.
func (r matchRow) toRecord() engine.MatchRecord {
	var played time.Time
	if r.MatchDate != "" {
		if t, err := time.Parse("2006-01-02", r.MatchDate); err == nil {
			played = t
		}
	}
	return engine.MatchRecord{
		HomeID:            r.HomeName,
		HomeName:          r.HomeName,
		AwayID:            r.AwayName,
		AwayName:          r.AwayName,
		HomeGoals:         r.HomeScore,
		AwayGoals:         r.AwayScore,
		HalfTimeHomeGoals: r.HomeHalfScore,
		HalfTimeAwayGoals: r.AwayHalfScore,
		Date:              played,
		IsCup:             r.IsCup != 0,
	}
}
