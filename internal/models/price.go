package models

import "time"

// Price is the current base price of a game in one country. Rows are
// replaced wholesale by the price crawler, so they carry no soft
// delete.
type Price struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GameID  uint   `gorm:"not null;uniqueIndex:idx_price_game_country"`
	Country string `gorm:"size:2;not null;uniqueIndex:idx_price_game_country"`

	Amount   string  `gorm:"size:12"`
	Currency string  `gorm:"size:8"`
	RawValue float64 `gorm:"not null"`

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}

// Sale is an active discount for a game in one country, with an
// optional time window.
type Sale struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	GameID  uint   `gorm:"not null;uniqueIndex:idx_sale_game_country"`
	Country string `gorm:"size:2;not null;uniqueIndex:idx_sale_game_country"`

	Amount   string  `gorm:"size:12"`
	Currency string  `gorm:"size:8"`
	RawValue float64 `gorm:"not null"`

	StartAt *time.Time
	EndAt   *time.Time

	Game Game `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}
