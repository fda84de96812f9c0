package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	// Basic info
	Email    string `gorm:"column:email;size:60;uniqueIndex"`    // Email address, globally unique
	Username string `gorm:"column:username;size:60;uniqueIndex"` // Username, globally unique
	Name     string `gorm:"column:name;size:120;index"`          // Display name
	IsAdmin  bool   `gorm:"column:is_admin"`                     // Admins may write (add, edit, delete); others may only browse

	// Role assignment
	RoleID *uint `gorm:"column:role_id;index"` // NULL means no role assigned
	Role   *Role `gorm:"foreignKey:RoleID"`

	// Login
	Password string `gorm:"column:password;size:128" json:"-"` // Password, stored as argon2id hash
}
