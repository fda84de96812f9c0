package models

import "gorm.io/gorm"

type Role struct {
	gorm.Model

	Name        string `gorm:"column:name;size:60;uniqueIndex"` // Role name, globally unique
	Description string `gorm:"column:description;size:200"`     // What the role is for

	Users []User `gorm:"foreignKey:RoleID"`
}
