package model

import "time"

type Category string

const (
	CategoryMen   Category = "Men"
	CategoryWomen Category = "Women"
	CategoryKids  Category = "Kids"
)

var (
	Categories = []Category{CategoryMen, CategoryWomen, CategoryKids}
	Sizes      = []string{"XS", "S", "M", "L", "XL", "XXL"}
	Brands     = []string{"Nike", "Pdidas", "Yuma", "Geebok", "Over Arm", "Neo"}
)

// 画像はスナップショット時に3枚まで
const MaxSnapshotImages = 3

type Product struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"_id"`
	Name        string    `gorm:"type:varchar(255);not null" bson:"name" json:"name"`
	Description string    `gorm:"type:text" bson:"description" json:"description"`
	Price       float64   `gorm:"type:numeric;not null" bson:"price" json:"price"`
	Sizes       []string  `gorm:"type:jsonb;serializer:json" bson:"sizes" json:"sizes"`
	Category    Category  `gorm:"type:varchar(20);not null;index" bson:"category" json:"category"`
	Stock       int64     `gorm:"not null;default:0" bson:"stock" json:"stock"`
	Images      []string  `gorm:"type:jsonb;serializer:json" bson:"images" json:"images"`
	Brand       string    `gorm:"type:varchar(50);not null;index" bson:"brand" json:"brand"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" bson:"updatedAt" json:"updatedAt"`
}

// カート/注文に埋め込む商品情報
type ProductSnapshot struct {
	Name   string
	Price  float64
	Images []string
}

func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		Name:   p.Name,
		Price:  p.Price,
		Images: TruncateImages(p.Images),
	}
}

// 先頭3枚のコピーを返す
func TruncateImages(images []string) []string {
	n := len(images)
	if n > MaxSnapshotImages {
		n = MaxSnapshotImages
	}
	out := make([]string, n)
	copy(out, images[:n])
	return out
}

func IsValidCategory(c Category) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

func IsValidSize(s string) bool {
	return contains(Sizes, s)
}

func IsValidBrand(b string) bool {
	return contains(Brands, b)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
