package models

import "gorm.io/gorm"

type User struct {
	Base
	Email    string `json:"email" gorm:"not null;index"`
	Password string `json:"-" gorm:"not null"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.ensureDefaults()
	return nil
}
