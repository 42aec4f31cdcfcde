package wizard

import (
	"context"
	"strings"
	"time"

	"github.com/agamariel/rentcar/internal/models"
)

// SetPickupTime задаёт время выдачи в формате ЧЧ:ММ.
func (w *Wizard) SetPickupTime(ctx context.Context, hhmm string) error {
	hhmm = strings.TrimSpace(hhmm)
	if _, err := time.Parse("15:04", hhmm); err != nil {
		return fieldError("pickupTime", "expected HH:MM, got %q", hhmm)
	}
	return w.mutate(ctx, func() error {
		w.state.PickupTime = hhmm
		return nil
	})
}

// SetPickupMethod задаёт способ получения. Адрес хранится только для доставки по адресу.
func (w *Wizard) SetPickupMethod(ctx context.Context, method models.PickupMethod, address string) error {
	if !method.Valid() {
		return fieldError("pickupMethod", "unknown method %q", method)
	}
	return w.mutate(ctx, func() error {
		w.state.PickupMethod = method
		if method == models.PickupAddress {
			w.state.PickupAddress = strings.TrimSpace(address)
		} else {
			w.state.PickupAddress = ""
		}
		return nil
	})
}

// SetUnlimitedMileage включает или выключает безлимитный пробег.
func (w *Wizard) SetUnlimitedMileage(ctx context.Context, on bool) error {
	return w.mutate(ctx, func() error {
		w.state.UnlimitedMileage = on
		return nil
	})
}

// SetGoldCard включает карту Gold. Карты взаимоисключающие.
func (w *Wizard) SetGoldCard(ctx context.Context, on bool) error {
	return w.mutate(ctx, func() error {
		w.state.GoldCard = on
		if on {
			w.state.ClubCard = false
		}
		return nil
	})
}

// SetClubCard включает карту Club. Карты взаимоисключающие.
func (w *Wizard) SetClubCard(ctx context.Context, on bool) error {
	return w.mutate(ctx, func() error {
		w.state.ClubCard = on
		if on {
			w.state.GoldCard = false
		}
		return nil
	})
}

// SetPayment задаёт способ оплаты. Описание хранится только для способа «другое».
func (w *Wizard) SetPayment(ctx context.Context, method models.PaymentMethod, other string) error {
	if !method.Valid() {
		return fieldError("paymentMethod", "unknown method %q", method)
	}
	return w.mutate(ctx, func() error {
		w.state.PaymentMethod = method
		if method == models.PaymentOther {
			w.state.PaymentOther = strings.TrimSpace(other)
		} else {
			w.state.PaymentOther = ""
		}
		return nil
	})
}

// SetCustomer сохраняет персональные данные. Проверка выполняется при отправке.
func (w *Wizard) SetCustomer(ctx context.Context, info models.CustomerInfo) error {
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.CountryCode = strings.TrimSpace(info.CountryCode)
	info.IDNP = strings.TrimSpace(info.IDNP)
	if info.CountryCode == "" {
		info.CountryCode = models.DefaultCountryCode
	}
	return w.mutate(ctx, func() error {
		w.state.Customer = info
		return nil
	})
}

// SetPrivacyAccepted отмечает согласие с политикой конфиденциальности.
func (w *Wizard) SetPrivacyAccepted(ctx context.Context, accepted bool) error {
	return w.mutate(ctx, func() error {
		w.state.PrivacyAccepted = accepted
		return nil
	})
}

// AttachDocument прикладывает фото стороны документа, заменяя предыдущее.
func (w *Wizard) AttachDocument(ctx context.Context, doc models.Document) error {
	if !doc.Side.Valid() {
		return fieldError("document", "unknown side %q", doc.Side)
	}
	if len(doc.Data) == 0 {
		return fieldError("document", "empty file")
	}
	return w.mutate(ctx, func() error {
		w.documents[doc.Side] = doc
		w.setPhotoFlagLocked(doc.Side, true)
		return nil
	})
}

// RemoveDocument убирает фото стороны документа.
func (w *Wizard) RemoveDocument(ctx context.Context, side models.DocumentSide) error {
	if !side.Valid() {
		return fieldError("document", "unknown side %q", side)
	}
	return w.mutate(ctx, func() error {
		delete(w.documents, side)
		w.setPhotoFlagLocked(side, false)
		return nil
	})
}

func (w *Wizard) setPhotoFlagLocked(side models.DocumentSide, on bool) {
	switch side {
	case models.DocumentFront:
		w.state.Photos.Front = on
	case models.DocumentBack:
		w.state.Photos.Back = on
	}
}

// SetActiveImage выбирает изображение автомобиля в галерее.
func (w *Wizard) SetActiveImage(ctx context.Context, index int) error {
	if index < 0 || (index > 0 && index >= len(w.car.Images)) {
		return fieldError("activeImage", "index %d out of range", index)
	}
	return w.mutate(ctx, func() error {
		w.state.ActiveImageIndex = index
		return nil
	})
}

// ExtrasUpdate - частичное обновление параметров шага 1 и оплаты. Поля nil не меняются.
type ExtrasUpdate struct {
	PickupTime       *string
	PickupMethod     *models.PickupMethod
	PickupAddress    *string
	UnlimitedMileage *bool
	GoldCard         *bool
	ClubCard         *bool
	PaymentMethod    *models.PaymentMethod
	PaymentOther     *string
	ActiveImageIndex *int
}

// UpdateExtras применяет обновление целиком или не применяет ничего:
// все поля проверяются до изменения состояния.
func (w *Wizard) UpdateExtras(ctx context.Context, u ExtrasUpdate) error {
	var pickupTime string
	if u.PickupTime != nil {
		pickupTime = strings.TrimSpace(*u.PickupTime)
		if _, err := time.Parse("15:04", pickupTime); err != nil {
			return fieldError("pickupTime", "expected HH:MM, got %q", pickupTime)
		}
	}
	if u.PickupMethod != nil && !u.PickupMethod.Valid() {
		return fieldError("pickupMethod", "unknown method %q", *u.PickupMethod)
	}
	if u.PaymentMethod != nil && !u.PaymentMethod.Valid() {
		return fieldError("paymentMethod", "unknown method %q", *u.PaymentMethod)
	}
	if i := u.ActiveImageIndex; i != nil && (*i < 0 || (*i > 0 && *i >= len(w.car.Images))) {
		return fieldError("activeImage", "index %d out of range", *i)
	}

	return w.mutate(ctx, func() error {
		st := &w.state
		if u.PickupTime != nil {
			st.PickupTime = pickupTime
		}
		if u.PickupMethod != nil || u.PickupAddress != nil {
			if u.PickupMethod != nil {
				st.PickupMethod = *u.PickupMethod
			}
			switch {
			case st.PickupMethod != models.PickupAddress:
				st.PickupAddress = ""
			case u.PickupAddress != nil:
				st.PickupAddress = strings.TrimSpace(*u.PickupAddress)
			}
		}
		if u.UnlimitedMileage != nil {
			st.UnlimitedMileage = *u.UnlimitedMileage
		}
		if u.GoldCard != nil {
			st.GoldCard = *u.GoldCard
			if st.GoldCard {
				st.ClubCard = false
			}
		}
		if u.ClubCard != nil {
			st.ClubCard = *u.ClubCard
			if st.ClubCard {
				st.GoldCard = false
			}
		}
		if u.PaymentMethod != nil || u.PaymentOther != nil {
			if u.PaymentMethod != nil {
				st.PaymentMethod = *u.PaymentMethod
			}
			switch {
			case st.PaymentMethod != models.PaymentOther:
				st.PaymentOther = ""
			case u.PaymentOther != nil:
				st.PaymentOther = strings.TrimSpace(*u.PaymentOther)
			}
		}
		if u.ActiveImageIndex != nil {
			st.ActiveImageIndex = *u.ActiveImageIndex
		}
		return nil
	})
}
