package services

import (
	"time"

	"eevy/internal/timeutil"

	"github.com/shopspring/decimal"
)

// DefaultPrice computes the price in cents for a window from the
// charger's hourly rate, pro rata for partial hours, bank rounded.
func DefaultPrice(pricePerHourMinor int64, w timeutil.Window) int64 {
	hours := decimal.NewFromInt(int64(w.Duration() / time.Minute)).Div(decimal.NewFromInt(60))
	return decimal.NewFromInt(pricePerHourMinor).Mul(hours).RoundBank(0).IntPart()
}
