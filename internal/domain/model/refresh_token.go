package model

import "time"

// ユーザーごとに現在有効なrefresh tokenは1つだけ（UserIDが主キー）
// 平文は保存せずsha256のhashのみ
type RefreshToken struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"userId"`
	TokenHash string    `gorm:"not null;index" bson:"tokenHash" json:"-"`
	ExpiresAt time.Time `gorm:"not null" bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `gorm:"not null" bson:"createdAt" json:"createdAt"`
}
