package models

import "time"

// Recommendation is one user's like (true) or dislike (false) of a game.
type Recommendation struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GameID     uint `gorm:"not null;uniqueIndex:idx_recommendation"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_recommendation"`
	Recommends bool `gorm:"not null"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// ConfirmedHighlight marks a game as highlighted, once per source.
// Vote-sourced rows follow the net likes-dislikes score.
type ConfirmedHighlight struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	GameID      uint               `gorm:"not null;uniqueIndex:idx_confirmed_highlight"`
	ConfirmedBy ConfirmationSource `gorm:"size:3;not null;uniqueIndex:idx_confirmed_highlight"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}
