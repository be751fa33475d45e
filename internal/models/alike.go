package models

import "time"

// AlikeVote is one user's vote that two games are alike. Casting a
// vote materializes both directions, so (game1, game2) and
// (game2, game1) always exist together for the same user. Rows are
// hard-deleted so a retracted vote can be cast again.
type AlikeVote struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	Game1ID uint `gorm:"not null;uniqueIndex:idx_alike_vote"`
	Game2ID uint `gorm:"not null;uniqueIndex:idx_alike_vote"`
	UserID  uint `gorm:"not null;uniqueIndex:idx_alike_vote"`

	Game1 Game `gorm:"foreignKey:Game1ID;constraint:OnDelete:CASCADE"`
	Game2 Game `gorm:"foreignKey:Game2ID;constraint:OnDelete:CASCADE"`
}

// ConfirmedAlike records an accepted alike relation, once per source
// and per direction. The mirror row exists iff the forward row does.
type ConfirmedAlike struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	Game1ID     uint               `gorm:"not null;uniqueIndex:idx_confirmed_alike"`
	Game2ID     uint               `gorm:"not null;uniqueIndex:idx_confirmed_alike"`
	ConfirmedBy ConfirmationSource `gorm:"size:3;not null;uniqueIndex:idx_confirmed_alike"`

	Game1 Game `gorm:"foreignKey:Game1ID;constraint:OnDelete:CASCADE"`
	Game2 Game `gorm:"foreignKey:Game2ID;constraint:OnDelete:CASCADE"`
}
