package model

import "time"

// 1ユーザーにつき1つ。同じ商品は1回だけ
type Wishlist struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID    string         `gorm:"type:varchar(36);not null;uniqueIndex" bson:"userId" json:"userId"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" bson:"products" json:"products"`
	CreatedAt time.Time      `gorm:"not null" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" bson:"updatedAt" json:"updatedAt"`
}

type WishlistItem struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" bson:"-" json:"-"`
	WishlistID string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_wishlist_product,priority:1" bson:"-" json:"-"`
	ProductID  string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_wishlist_product,priority:2" bson:"productId" json:"productId"`
	AddedAt    time.Time `gorm:"not null" bson:"addedAt" json:"addedAt"`
}

func (w Wishlist) Contains(productID string) bool {
	for _, it := range w.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}
