package util

import (
	"github.com/shopspring/decimal"
)

func MinInt(val0 int, vals ...int) int {
	min := val0
	for _, v := range vals {
		if v < min {
			min = v
		}
	}
	return min
}

func MinDecimal(val0 decimal.Decimal, vals ...decimal.Decimal) decimal.Decimal {
	min := val0
	for _, v := range vals {
		if v.LessThan(min) {
			min = v
		}
	}
	return min
}
