package model

// 注文時点のコピー。商品側の変更は反映しない
// Priceは古いデータで欠けていることがあるのでポインタ
type OrderItem struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	OrderID   string   `gorm:"type:varchar(36);not null;index" bson:"-" json:"-"`
	Position  int      `gorm:"not null" bson:"-" json:"-"`
	ProductID string   `gorm:"type:varchar(36);not null;index" bson:"productId" json:"productId"`
	Name      string   `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Images    []string `gorm:"type:jsonb;serializer:json" bson:"images" json:"images"`
	Size      string   `gorm:"type:varchar(10);not null" bson:"size" json:"size"`
	Quantity  int64    `gorm:"not null" bson:"quantity" json:"quantity"`
	Price     *float64 `gorm:"type:numeric" bson:"price,omitempty" json:"price"`
}

func (i OrderItem) UnitPrice() float64 {
	if i.Price == nil {
		return 0
	}
	return *i.Price
}

func (i OrderItem) LineTotal() float64 {
	return ToAmount(LineTotal(i.UnitPrice(), i.Quantity))
}

func OrderTotal(items []OrderItem) float64 {
	return ToAmount(SumLines(items,
		func(i OrderItem) float64 { return i.UnitPrice() },
		func(i OrderItem) int64 { return i.Quantity },
	))
}
