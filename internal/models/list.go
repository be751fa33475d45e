package models

import "gorm.io/gorm"

// ListSlot is an ordered home-page display position.
type ListSlot struct {
	gorm.Model
	Order int `gorm:"not null;default:0"`
}

// GameList is a saved, weighted search attached to a slot. QueryJSON
// holds the serialized filter specification, validated at save time.
// LoggedOnly lists are shown to authenticated viewers only. Frequency
// is the relative weight used when a slot picks one of its lists.
type GameList struct {
	gorm.Model
	Title      string `gorm:"size:128;not null"`
	QueryJSON  string `gorm:"size:512;not null"`
	LoggedOnly bool   `gorm:"not null;default:false"`
	Frequency  int    `gorm:"not null;default:1"`
	SlotID     uint   `gorm:"not null;index"`

	Slot ListSlot `gorm:"foreignKey:SlotID;constraint:OnDelete:CASCADE"`
}
