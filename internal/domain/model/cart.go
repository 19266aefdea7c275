package model

import "time"

// 1ユーザーにつき1つ
// Versionは保存のたびに+1（楽観ロック）
type Cart struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	UserID    string     `gorm:"type:varchar(36);not null;uniqueIndex" bson:"userId" json:"userId"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" bson:"items" json:"items"`
	Version   int64      `gorm:"not null;default:0" bson:"version" json:"-"`
	CreatedAt time.Time  `gorm:"not null" bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" bson:"updatedAt" json:"updatedAt"`
}

// 1明細あたりの数量上限（カート・注文共通）
const MaxLineQuantity int64 = 1000

// (productId, size) の明細の数量。無ければ 0
func (c *Cart) LineQuantity(productID, size string) int64 {
	if i := c.IndexOf(productID, size); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// (productId, size) の明細位置。無ければ -1
func (c *Cart) IndexOf(productID, size string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].Size == size {
			return i
		}
	}
	return -1
}

// AddLineは同じ(productId, size)があれば数量を加算してスナップショットを更新、
// 無ければnewIDで明細を追加する
func (c *Cart) AddLine(newID, productID, size string, quantity int64, snap ProductSnapshot) CartItem {
	if i := c.IndexOf(productID, size); i >= 0 {
		c.Items[i].Quantity += quantity
		c.Items[i].applySnapshot(snap)
		return c.Items[i]
	}

	item := CartItem{
		ID:        newID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	}
	item.applySnapshot(snap)
	c.Items = append(c.Items, item)
	return item
}

// 数量を上書き（加算しない）
func (c *Cart) SetQuantity(productID, size string, quantity int64, snap ProductSnapshot) bool {
	i := c.IndexOf(productID, size)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	c.Items[i].applySnapshot(snap)
	return true
}

// 明細ID + サイズで削除。消えなければ false
func (c *Cart) RemoveLine(itemID, size string) bool {
	kept := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ID == itemID && it.Size == size {
			continue
		}
		kept = append(kept, it)
	}
	removed := len(kept) != len(c.Items)
	c.Items = kept
	return removed
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

func (c Cart) Subtotal() float64 {
	return ToAmount(SumLines(c.Items,
		func(i CartItem) float64 { return i.Price },
		func(i CartItem) int64 { return i.Quantity },
	))
}
