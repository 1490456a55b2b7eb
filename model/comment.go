package model

type Comment struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID uint `gorm:"column:userid;not null" json:"user_id"`
	// Copied from the author's token when the comment is written
	Username string `gorm:"size:80;not null" json:"username"`
	VideoID  uint   `gorm:"index;not null" json:"video_id"`
	Text     string `gorm:"type:text;not null" json:"text"`
}
