package model

import "github.com/shopspring/decimal"

const moneyPlaces = 2

// RoundMoney 四捨五入到小數點後兩位。金額皆為非負數，
// decimal 的 half away from zero 在此等同 half-up
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(moneyPlaces)
}
