package model

type Video struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`
	// Loose reference to users.id, no constraint is created for it
	UserID      uint    `gorm:"index" json:"user_id"`
	Title       string  `gorm:"size:200;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description"`
	URL         string  `gorm:"column:url;size:200;not null" json:"url"`
	Preview     string  `gorm:"size:200;not null" json:"preview"`
}
