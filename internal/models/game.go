package models

import (
	"time"

	"gorm.io/gorm"
)

// Game is the canonical catalog entry, identified by the 5-character
// unique game code. It links at most one US and one EU region record;
// title and image prefer the EU record and fall back to US.
type Game struct {
	gorm.Model
	CodeUnique string `gorm:"size:5;uniqueIndex;not null"`
	Hide       bool   `gorm:"not null;default:false"`

	GameUSID *uint `gorm:"column:game_us_id;uniqueIndex"`
	GameEUID *uint `gorm:"column:game_eu_id;uniqueIndex"`

	GameUS *GameUS `gorm:"foreignKey:GameUSID"`
	GameEU *GameEU `gorm:"foreignKey:GameEUID"`
}

// Title prefers the EU record and falls back to US.
func (g *Game) Title() string {
	if g.GameEU != nil {
		return g.GameEU.Title
	}
	if g.GameUS != nil {
		return g.GameUS.Title
	}
	return ""
}

// Image prefers the EU square art and falls back to the US box art.
func (g *Game) Image() string {
	if g.GameEU != nil && g.GameEU.ImageSqH2URL != "" {
		return g.GameEU.ImageSqH2URL
	}
	if g.GameUS != nil {
		return g.GameUS.FrontBoxArt
	}
	return ""
}

// ReleaseUS returns the US release date, if a US record is linked.
func (g *Game) ReleaseUS() *time.Time {
	if g.GameUS == nil {
		return nil
	}
	return &g.GameUS.ReleaseDate
}

// ReleaseEU returns the EU release date, if an EU record is linked.
func (g *Game) ReleaseEU() *time.Time {
	if g.GameEU == nil {
		return nil
	}
	return &g.GameEU.ReleaseDate
}

// GameUS holds the attribute snapshot ingested from the US store.
type GameUS struct {
	gorm.Model
	Title       string `gorm:"size:256;not null"`
	Slug        string `gorm:"size:256"`
	ReleaseDate time.Time

	NSUID      string `gorm:"size:14"`
	CodeSystem string `gorm:"size:3"`
	CodeRegion string `gorm:"size:1"`
	CodeUnique string `gorm:"size:5;uniqueIndex;not null"`

	FrontBoxArt string `gorm:"size:512"`
	VideoLink   string `gorm:"size:32"`
}

// GameEU holds the attribute snapshot ingested from the EU store.
type GameEU struct {
	gorm.Model
	Title       string `gorm:"size:256;not null"`
	URL         string `gorm:"size:256"`
	ReleaseDate time.Time
	Description string

	NSUID      string `gorm:"size:14"`
	FSID       string `gorm:"size:8"`
	CodeSystem string `gorm:"size:3"`
	CodeRegion string `gorm:"size:1"`
	CodeUnique string `gorm:"size:5;uniqueIndex;not null"`

	ImageURL     string `gorm:"size:512"`
	ImageSqURL   string `gorm:"size:512"`
	ImageSqH2URL string `gorm:"size:512"`
}
