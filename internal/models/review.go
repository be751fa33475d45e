package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is a written review tied to the author's recommendation.
type Review struct {
	gorm.Model
	Text             string `gorm:"not null"`
	GameID           uint   `gorm:"not null;uniqueIndex:idx_review_game_user"`
	UserID           uint   `gorm:"not null;uniqueIndex:idx_review_game_user"`
	RecommendationID uint   `gorm:"not null;uniqueIndex"`
	HasEdited        bool   `gorm:"not null;default:false"`

	Game           Game           `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	User           User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recommendation Recommendation `gorm:"foreignKey:RecommendationID;constraint:OnDelete:CASCADE"`
}

// ReviewVote is one user's up/down vote on a review.
type ReviewVote struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	ReviewID uint `gorm:"not null;uniqueIndex:idx_review_vote"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_review_vote"`
	Vote     bool `gorm:"not null"`

	Review Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
}
