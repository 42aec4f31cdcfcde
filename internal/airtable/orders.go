package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agamariel/rentcar/internal/models"
)

const (
	fieldOrderCars   = "Выбранный автомобиль"
	fieldOrderStart  = "Дата начала аренды"
	fieldOrderEnd    = "Дата окончания аренды"
	fieldOrderStatus = "Статус заявки"

	// OrderStatusNew - статус новой заявки.
	OrderStatusNew = "новая"
)

type orderFields struct {
	CarIDs    []string `json:"Выбранный автомобиль"`
	StartDate string   `json:"Дата начала аренды"`
	EndDate   string   `json:"Дата окончания аренды"`
	Status    string   `json:"Статус заявки"`
}

// FetchOrders читает заявки: автомобили, даты и статус.
func (c *HTTPClient) FetchOrders(ctx context.Context) ([]models.Order, error) {
	query := url.Values{}
	for _, f := range []string{fieldOrderCars, fieldOrderStart, fieldOrderEnd, fieldOrderStatus} {
		query.Add("fields[]", f)
	}
	query.Set("returnFieldsByFieldId", "false")

	var records []Record
	err := logCall("fetch_orders", func() error {
		var err error
		records, err = c.list(ctx, c.cfg.OrdersTable, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(records))
	for _, rec := range records {
		var f orderFields
		if len(rec.Fields) > 0 {
			if err := json.Unmarshal(rec.Fields, &f); err != nil {
				return nil, fmt.Errorf("decode order %s: %w", rec.ID, err)
			}
		}
		orders = append(orders, models.Order{
			ID:        rec.ID,
			CarIDs:    f.CarIDs,
			StartDate: f.StartDate,
			EndDate:   f.EndDate,
			Status:    strings.ToLower(strings.TrimSpace(f.Status)),
		})
	}
	return orders, nil
}

// OrderPayload - данные новой заявки. Пустые поля в запись не попадают.
type OrderPayload struct {
	CustomerName     string
	Phone            string
	Email            string
	CarID            string
	StartDate        string
	EndDate          string
	PickupTime       string
	IDNP             string
	PickupMethod     models.PickupMethod
	PickupAddress    string
	UnlimitedMileage bool
	GoldCard         bool
	ClubCard         bool
	PaymentMethod    models.PaymentMethod
	PaymentOther     string
	PhotoFrontURL    string
	PhotoBackURL     string
	Subtotal         *decimal.Decimal
	TotalCost        *decimal.Decimal
	DiscountAmount   *decimal.Decimal
	MileageCost      *decimal.Decimal
	DeliveryCost     *decimal.Decimal
}

// Fields собирает поля записи таблицы заявок.
func (p OrderPayload) Fields() map[string]any {
	fields := map[string]any{
		"Имя клиента":    p.CustomerName,
		"Телефон":        p.Phone,
		"Email":          p.Email,
		fieldOrderStatus: OrderStatusNew,
	}

	if p.PhotoFrontURL != "" {
		fields["Фото документа (фронт)"] = []attachment{{URL: p.PhotoFrontURL}}
	}
	if p.PhotoBackURL != "" {
		fields["Фото документа (оборот)"] = []attachment{{URL: p.PhotoBackURL}}
	}
	if p.CarID != "" {
		fields[fieldOrderCars] = []string{p.CarID}
	}
	if p.StartDate != "" {
		fields[fieldOrderStart] = p.StartDate
	}
	if p.EndDate != "" {
		fields[fieldOrderEnd] = p.EndDate
	}
	if p.PickupTime != "" {
		fields["Время выдачи"] = p.PickupTime
	}
	if p.IDNP != "" {
		fields["IDNP"] = p.IDNP
	}

	// Аэропорт считается доставкой, для адреса «Как забрать машину» не заполняется.
	switch p.PickupMethod {
	case models.PickupOffice:
		fields["Как забрать машину"] = "Заберу из офиса"
		fields["Тип получения"] = "Офис"
	case models.PickupAirport:
		fields["Как забрать машину"] = "Заберу из аэропорта"
		fields["Тип получения"] = "Доставка"
	case models.PickupAddress:
		fields["Тип получения"] = "Доставка"
	}
	if p.PickupAddress != "" {
		fields["Доставить по адресу"] = p.PickupAddress
	}

	if p.UnlimitedMileage {
		fields["Безлимитный километраж"] = "да"
	}
	if p.GoldCard {
		fields["Gold карта"] = true
	}
	if p.ClubCard {
		fields["Club карта"] = true
	}

	switch p.PaymentMethod {
	case models.PaymentCash:
		fields["Способ оплаты"] = "Наличные"
	case models.PaymentCard:
		fields["Способ оплаты"] = "Карта"
	case models.PaymentOther:
		fields["Способ оплаты"] = "Другое"
		if p.PaymentOther != "" {
			fields["Детали оплаты"] = p.PaymentOther
		}
	}

	if p.TotalCost != nil {
		fields["Общая стоимость"] = p.TotalCost.InexactFloat64()
	}
	// Суммы хранятся в текстовых полях.
	if p.Subtotal != nil {
		fields["Стоимость аренды"] = p.Subtotal.String()
	}
	if p.DiscountAmount != nil {
		fields["Сумма скидки"] = p.DiscountAmount.String()
	}
	if p.MileageCost != nil {
		fields["Двойной км сумма"] = p.MileageCost.String()
	}
	if p.DeliveryCost != nil {
		fields["Доставка сумма"] = p.DeliveryCost.String()
	}

	return fields
}

// CreateOrder создаёт заявку на аренду.
func (c *HTTPClient) CreateOrder(ctx context.Context, payload OrderPayload) (*Record, error) {
	var rec *Record
	err := logCall("create_order", func() error {
		var err error
		rec, err = c.create(ctx, c.cfg.OrdersTable, payload.Fields())
		return err
	}, "car_id", payload.CarID)
	return rec, err
}

// CreateContactRequest создаёт обращение с датой создания в формате YYYY-MM-DD.
func (c *HTTPClient) CreateContactRequest(ctx context.Context, req models.ContactRequest, created time.Time) (*Record, error) {
	fields := map[string]any{
		"Полное имя":    req.FullName,
		"Email":         req.Email,
		"Телефон":       req.Phone,
		"Сообщение":     req.Message,
		"Дата создания": created.UTC().Format("2006-01-02"),
	}

	var rec *Record
	err := logCall("create_contact_request", func() error {
		var err error
		rec, err = c.create(ctx, c.cfg.ContactTable, fields)
		return err
	})
	return rec, err
}
