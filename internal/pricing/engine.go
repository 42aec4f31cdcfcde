// Package pricing рассчитывает стоимость аренды по тарифной сетке автомобиля.
package pricing

import (
	"math"
	"time"

	"github.com/agamariel/rentcar/internal/models"
	"github.com/shopspring/decimal"
)

// Engine рассчитывает PricingBreakdown. Не хранит состояния между вызовами.
type Engine struct {
	rates Rates
}

// NewEngine создаёт движок с заданными параметрами.
func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// Rates возвращает параметры движка.
func (e *Engine) Rates() Rates {
	return e.rates
}

// DayCount возвращает число дней аренды: не меньше одного, аренда в тот же день - один день.
func DayCount(pickup, ret time.Time) int {
	days := int(math.Ceil(ret.Sub(pickup).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// TierFor выбирает тариф по числу дней. Ставка тарифа применяется ко всем дням.
func TierFor(car models.Car, days int) (models.PricingTier, decimal.Decimal) {
	switch {
	case days <= 1:
		return models.Tier1Day, car.Rate1Day
	case days <= 10:
		return models.Tier2to10, car.Rate2to10
	case days <= 20:
		return models.Tier11to20, car.Rate11to20
	case days <= 29:
		return models.Tier21to29, car.Rate21to29
	default:
		return models.Tier30Plus, car.Rate30Plus
	}
}

// Compute рассчитывает стоимость аренды. Одинаковые входные данные дают одинаковый результат.
func (e *Engine) Compute(pickup, ret time.Time, car models.Car, extras models.PricingExtras) models.PricingBreakdown {
	days := DayCount(pickup, ret)
	tier, rate := TierFor(car, days)
	subtotal := rate.Mul(decimal.NewFromInt(int64(days)))

	b := models.PricingBreakdown{
		Days:        days,
		Tier:        tier,
		Rate:        rate,
		Subtotal:    subtotal,
		WashFee:     e.rates.WashFee,
		MileageFee:  decimal.Zero,
		DeliveryFee: decimal.Zero,
		Discount:    decimal.Zero,
		Currency:    e.rates.Currency,
	}

	if extras.UnlimitedMileage {
		b.MileageFee = e.rates.MileageFeePerDay.Mul(decimal.NewFromInt(int64(days)))
	}
	if extras.PickupMethod.RequiresDelivery() {
		b.DeliveryFee = e.rates.DeliveryFee
	}

	switch {
	case extras.GoldCard:
		b.DiscountCard = models.LoyaltyCardGold
		b.Discount = subtotal.Mul(e.rates.GoldCardDiscount).Round(2)
	case extras.ClubCard:
		b.DiscountCard = models.LoyaltyCardClub
		b.Discount = subtotal.Mul(e.rates.ClubCardDiscount).Round(2)
	}

	total := subtotal.Add(b.WashFee).Add(b.MileageFee).Add(b.DeliveryFee).Sub(b.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	b.Total = total
	return b
}
