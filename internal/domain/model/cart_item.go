package model

// カートの明細
// price/name/images は最後に追加・更新した時点の商品情報
type CartItem struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	CartID    string   `gorm:"type:varchar(36);not null;index;uniqueIndex:ux_cart_items_line,priority:1" bson:"-" json:"-"`
	Position  int      `gorm:"not null" bson:"-" json:"-"`
	ProductID string   `gorm:"type:varchar(36);not null;uniqueIndex:ux_cart_items_line,priority:2" bson:"productId" json:"productId"`
	Size      string   `gorm:"type:varchar(10);not null;uniqueIndex:ux_cart_items_line,priority:3" bson:"size" json:"size"`
	Quantity  int64    `gorm:"not null" bson:"quantity" json:"quantity"`
	Price     float64  `gorm:"type:numeric;not null" bson:"price" json:"price"`
	Name      string   `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Images    []string `gorm:"type:jsonb;serializer:json" bson:"images" json:"images"`
}

func (i CartItem) TotalPrice() float64 {
	return ToAmount(LineTotal(i.Price, i.Quantity))
}

func (i *CartItem) applySnapshot(s ProductSnapshot) {
	i.Price = s.Price
	i.Name = s.Name
	i.Images = TruncateImages(s.Images)
}
