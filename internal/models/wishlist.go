package models

import "time"

// Wishlist marks a game a user wants; cleared when the user rates it.
type Wishlist struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	GameID uint `gorm:"not null;uniqueIndex:idx_wishlist"`
	UserID uint `gorm:"not null;uniqueIndex:idx_wishlist"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
