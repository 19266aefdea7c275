package model

import "time"

// 配送先住所（1ユーザー複数可）
type Address struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"userAddressId"`
	UserID    string    `gorm:"type:varchar(36);not null;index" bson:"userId" json:"userId"`
	FirstName string    `gorm:"type:varchar(100);not null" bson:"firstName" json:"firstName"`
	LastName  string    `gorm:"type:varchar(100);not null" bson:"lastName" json:"lastName"`
	Email     string    `gorm:"type:varchar(255);not null" bson:"email" json:"email"`
	Phone     string    `gorm:"type:varchar(30);not null" bson:"phone" json:"phone"`
	Address   string    `gorm:"type:varchar(255);not null" bson:"address" json:"address"`
	City      string    `gorm:"type:varchar(100);not null" bson:"city" json:"city"`
	State     string    `gorm:"type:varchar(100);not null" bson:"state" json:"state"`
	Country   string    `gorm:"type:varchar(100);not null" bson:"country" json:"country"`
	ZipCode   string    `gorm:"type:varchar(20);not null" bson:"zipCode" json:"zipCode"`
	CreatedAt time.Time `gorm:"not null" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" bson:"updatedAt" json:"updatedAt"`
}
