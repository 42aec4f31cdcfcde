package models

import "github.com/shopspring/decimal"

// PricingTier - ценовой диапазон по количеству дней.
type PricingTier string

const (
	Tier1Day   PricingTier = "1"
	Tier2to10  PricingTier = "2-10"
	Tier11to20 PricingTier = "11-20"
	Tier21to29 PricingTier = "21-29"
	Tier30Plus PricingTier = "30+"
)

// LoyaltyCard - карта лояльности, дающая скидку.
type LoyaltyCard string

const (
	LoyaltyCardNone LoyaltyCard = ""
	LoyaltyCardGold LoyaltyCard = "gold"
	LoyaltyCardClub LoyaltyCard = "club"
)

// PricingExtras - параметры заявки, влияющие на стоимость.
type PricingExtras struct {
	UnlimitedMileage bool
	PickupMethod     PickupMethod
	GoldCard         bool
	ClubCard         bool
}

// PricingBreakdown - расчёт стоимости аренды. Не хранится отдельно от состояния.
type PricingBreakdown struct {
	Days         int             `json:"days"`
	Tier         PricingTier     `json:"tier"`
	Rate         decimal.Decimal `json:"rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	WashFee      decimal.Decimal `json:"washFee"`
	MileageFee   decimal.Decimal `json:"mileageFee"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	Discount     decimal.Decimal `json:"discount"`
	DiscountCard LoyaltyCard     `json:"discountCard,omitempty"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
}
