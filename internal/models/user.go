package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleResident Role = "resident"
	RoleDriver   Role = "driver"
	RoleAdmin    Role = "admin"
)

// ValidRole reports whether role is one of the three application roles.
func ValidRole(role string) bool {
	switch Role(role) {
	case RoleResident, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"column:username;unique;not null"`
	Email           string    `json:"email" gorm:"column:email;unique;not null"`
	Password        string    `json:"-" gorm:"-"` // transient, hashed into PasswordHash before persisting
	PasswordHash    string    `json:"-" gorm:"column:password_hash;not null"`
	FirstName       string    `json:"firstName" gorm:"column:first_name"`
	LastName        string    `json:"lastName" gorm:"column:last_name"`
	Role            string    `json:"role" gorm:"column:role;not null;default:'resident'"`
	ProfileImageURL string    `json:"profileImageUrl" gorm:"column:profile_image_url"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword() error {
	if u.Password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
