package models

import (
	"time"

	"gorm.io/gorm"
)

// TagGroup controls voting and search exposure for its tags.
type TagGroup struct {
	gorm.Model
	Name              string `gorm:"size:64;uniqueIndex;not null"`
	AllowVote         bool   `gorm:"not null"`
	MinGamesForSearch int    `gorm:"not null;default:0"`
}

// Tag belongs to exactly one group; the name is unique within it.
type Tag struct {
	gorm.Model
	Name       string `gorm:"size:128;not null;uniqueIndex:idx_tag_name_group"`
	TagGroupID uint   `gorm:"not null;uniqueIndex:idx_tag_name_group"`

	TagGroup TagGroup `gorm:"foreignKey:TagGroupID"`
}

// TagVote is one user's vote that a tag describes a game.
// Hard-deleted rows, so a retracted vote can be cast again.
type TagVote struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	TagID  uint `gorm:"not null;uniqueIndex:idx_tag_vote"`
	GameID uint `gorm:"not null;uniqueIndex:idx_tag_vote"`
	UserID uint `gorm:"not null;uniqueIndex:idx_tag_vote"`

	Tag  Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}

// ConfirmedTag records that a (game, tag) classification is accepted,
// once per source.
type ConfirmedTag struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	TagID       uint               `gorm:"not null;uniqueIndex:idx_confirmed_tag"`
	GameID      uint               `gorm:"not null;uniqueIndex:idx_confirmed_tag"`
	ConfirmedBy ConfirmationSource `gorm:"size:3;not null;uniqueIndex:idx_confirmed_tag"`

	Tag  Tag  `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}
