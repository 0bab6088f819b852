package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlayerStatistic is one subject's record. Name is unique within a document.
type PlayerStatistic struct {
	Name          string `json:"name"`
	Rank          string `json:"rank,omitempty"`
	StrikeRate    string `json:"strikeRate,omitempty"`
	MatchesPlayed int    `json:"matchesPlayed,omitempty"`
	RunsScored    int    `json:"runsScored,omitempty"`
	ImageURL      string `json:"imageUrl,omitempty"`
}

// Statistics groups player records under an article id.
type Statistics struct {
	Base
	Key        string                               `json:"key" gorm:"not null;index"`
	Statistics datatypes.JSONSlice[PlayerStatistic] `json:"statistics"`
}

func (s *Statistics) BeforeCreate(tx *gorm.DB) error {
	s.ensureDefaults()
	if s.Statistics == nil {
		s.Statistics = datatypes.JSONSlice[PlayerStatistic]{}
	}
	return nil
}

// TableName keeps the collection name used by the statistics feed.
func (Statistics) TableName() string {
	return "player_statistics"
}
