package models

import "time"

type MediaType string

const (
	MediaTypeImage   MediaType = "IMG"
	MediaTypeYoutube MediaType = "YTB"
)

// Media is an ordered media asset (image URL or youtube code) of a game.
type Media struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	MediaType MediaType `gorm:"size:3;not null"`
	URL       string    `gorm:"size:256;not null"`
	GameID    uint      `gorm:"not null;index"`
	Order     int       `gorm:"not null;default:0"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}
