package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"rasa-cafe/model"
)

const (
	HotBar  = "بار گرم"
	ColdBar = "بار سرد"

	defaultMenuStock = 100
)

// DefaultMenu is the starting menu of a fresh installation.
func DefaultMenu() []model.Product {
	items := []struct {
		name     string
		price    int64
		category string
		rating   float64
		maxOrder int
	}{
		{"اسپرسو", 30000, HotBar, 4.5, 5},
		{"کافه لاته", 45000, HotBar, 4.8, 3},
		{"کاپوچینو", 40000, HotBar, 4.4, 5},
		{"هات چاکلت", 40000, HotBar, 4.5, 3},
		{"چای ماسالا", 25000, HotBar, 4.3, 6},
		{"چای سیاه", 25000, HotBar, 4.2, 6},
		{"چای نعناع", 30000, HotBar, 4.1, 5},
		{"دمنوش گیاهی", 20000, HotBar, 4.0, 6},
		{"آیس کارامل ماکیاتو", 65000, ColdBar, 4.9, 2},
		{"آیس کافی", 45000, ColdBar, 4.3, 5},
		{"آیس موکا", 55000, ColdBar, 4.7, 3},
		{"موهیتو", 55000, ColdBar, 4.6, 4},
		{"آیس تی لیمویی", 30000, ColdBar, 4.2, 4},
		{"آیس چای هلو", 35000, ColdBar, 4.4, 4},
		{"چای سبز یخ زده", 35000, ColdBar, 4.1, 5},
		{"اسموتی توت فرنگی", 70000, ColdBar, 4.7, 3},
		{"اسموتی موز و انبه", 65000, ColdBar, 4.9, 2},
		{"شیک شکلاتی", 60000, ColdBar, 4.8, 2},
		{"شیک وانیلی", 60000, ColdBar, 4.8, 2},
		{"آبمیوه طبیعی", 50000, ColdBar, 4.6, 4},
	}

	products := make([]model.Product, len(items))
	for i, it := range items {
		products[i] = model.Product{
			Name:            it.name,
			Price:           it.price,
			Category:        it.category,
			Rating:          it.rating,
			MaxOrderPerUser: it.maxOrder,
			Stock:           defaultMenuStock,
		}
	}
	return products
}

// SeedMenu inserts every product whose name is not on the menu yet and
// returns how many were added.
func SeedMenu(ctx context.Context, db *gorm.DB, products []model.Product) (int, error) {
	added := 0
	for i := range products {
		p := products[i]
		var existing int64
		if err := db.WithContext(ctx).Model(&model.Product{}).Where("name = ?", p.Name).Count(&existing).Error; err != nil {
			return added, err
		}
		if existing > 0 {
			continue
		}
		if err := db.WithContext(ctx).Create(&p).Error; err != nil {
			return added, fmt.Errorf("seed %s: %w", p.Name, err)
		}
		added++
	}
	return added, nil
}
