package model

import "github.com/shopspring/decimal"

// 単価×数量（float誤差を避けるためdecimalで計算）
func LineTotal(price float64, quantity int64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity))
}

// 明細の合計
func SumLines[T any](lines []T, price func(T) float64, qty func(T) int64) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(LineTotal(price(l), qty(l)))
	}
	return total
}

func ToAmount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
