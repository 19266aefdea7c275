package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// TokenVersionを上げると発行済みのaccess/resetトークンが無効になる
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	Username     string    `gorm:"type:varchar(100);not null" bson:"username" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" bson:"email" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" bson:"passwordHash" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'USER'" bson:"role" json:"role"`
	TokenVersion int       `gorm:"not null;default:0" bson:"tokenVersion" json:"-"`
	CreatedAt    time.Time `gorm:"not null" bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" bson:"updatedAt" json:"updatedAt"`
}
