// Package model defines database models
package model

type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"size:80;not null" json:"username"`
	Email    string `gorm:"size:120;unique;not null" json:"email"`
	// Encoded hash, never the plaintext
	Password string `gorm:"size:200;not null" json:"-"`
}
