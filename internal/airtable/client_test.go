package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agamariel/rentcar/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Config{
		BaseURL: srv.URL,
		BaseID:  "appTest",
		Token:   "secret",
		Timeout: time.Second,
	})
}

func TestFetchCars_PagingAndMapping(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/appTest/"+DefaultCarsTable, r.URL.Path)
		assert.Equal(t, fieldCarName, r.URL.Query().Get("sort[0][field]"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "" {
			_, _ = io.WriteString(w, `{"records":[{"id":"rec1","fields":{
				"Название/модель":"Audi A4","Категория":"Седан","Рейтинг":4.5,"Количество мест":5,
				"Тип коробки передач":"Автомат","Тип топлива":"Дизель","Привод":"Полный",
				"Список опций":["Bluetooth"],"Фото":[{"url":"https://img/1.jpg"}],
				"Год выпуска":2021,"Описание рус":"Комфорт",
				"Цена за день":50,"Цена за 2-10 дней":40}}],"offset":"page2"}`)
			return
		}
		assert.Equal(t, "page2", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"records":[{"id":"rec2","fields":{"Название/модель":"BMW X5","Категория":"UFO"}}]}`)
	})

	cars, err := client.FetchCars(context.Background())
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, 2, calls)

	audi := cars[0]
	assert.Equal(t, "rec1", audi.ID)
	assert.Equal(t, models.CategorySedan, audi.Category)
	assert.Equal(t, models.TransmissionAutomatic, audi.Transmission)
	assert.Equal(t, models.FuelDiesel, audi.Fuel)
	assert.Equal(t, models.DriveAWD, audi.Drive)
	assert.Equal(t, "2021", audi.Year)
	assert.Equal(t, []string{"https://img/1.jpg"}, audi.Images)
	assert.Equal(t, "Комфорт", audi.Descriptions["ru"])
	assert.True(t, audi.Rate1Day.Equal(decimal.NewFromInt(50)))
	assert.True(t, audi.Rate2to10.Equal(decimal.NewFromInt(40)))
	assert.True(t, audi.Rate30Plus.Equal(decimal.NewFromInt(50)), "missing tier falls back to the daily price")

	bmw := cars[1]
	assert.Equal(t, models.Category(""), bmw.Category, "unknown category maps to empty")
	assert.True(t, bmw.Rate1Day.IsZero())
}

func TestFetchOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appTest/"+DefaultOrdersTable, r.URL.Path)
		assert.ElementsMatch(t, []string{fieldOrderCars, fieldOrderStart, fieldOrderEnd, fieldOrderStatus}, r.URL.Query()["fields[]"])
		_, _ = io.WriteString(w, `{"records":[
			{"id":"o1","fields":{"Выбранный автомобиль":["rec1"],"Дата начала аренды":"2024-03-03","Дата окончания аренды":"2024-03-06","Статус заявки":"Подтверждена"}},
			{"id":"o2","fields":{}}]}`)
	})

	orders, err := client.FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, []string{"rec1"}, orders[0].CarIDs)
	assert.Equal(t, "подтверждена", orders[0].Status)
	assert.True(t, orders[0].IsConfirmed())
	assert.False(t, orders[1].HasDates())
}

func TestCreateOrder_SparsePayload(t *testing.T) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"id":"recNew","createdTime":"2024-03-01T10:00:00.000Z","fields":{}}`)
	})

	total := decimal.NewFromInt(264)
	discount := decimal.NewFromInt(16)
	subtotal := decimal.NewFromInt(240)
	rec, err := client.CreateOrder(context.Background(), OrderPayload{
		CustomerName:   "Ion Popescu",
		Phone:          "+37369123456",
		Email:          "ion@example.com",
		CarID:          "rec1",
		StartDate:      "2024-03-01",
		EndDate:        "2024-03-05",
		PickupMethod:   models.PickupAirport,
		GoldCard:       true,
		PaymentMethod:  models.PaymentOther,
		PaymentOther:   "перевод",
		PhotoFrontURL:  "https://files/front.jpg",
		Subtotal:       &subtotal,
		TotalCost:      &total,
		DiscountAmount: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
	assert.Equal(t, 2024, rec.CreatedTime.Year())

	f := body.Fields
	assert.Equal(t, "Ion Popescu", f["Имя клиента"])
	assert.Equal(t, OrderStatusNew, f["Статус заявки"])
	assert.Equal(t, []any{"rec1"}, f["Выбранный автомобиль"])
	assert.Equal(t, "Заберу из аэропорта", f["Как забрать машину"])
	assert.Equal(t, "Доставка", f["Тип получения"])
	assert.Equal(t, true, f["Gold карта"])
	assert.Equal(t, "Другое", f["Способ оплаты"])
	assert.Equal(t, "перевод", f["Детали оплаты"])
	assert.Equal(t, float64(264), f["Общая стоимость"])
	assert.Equal(t, "16", f["Сумма скидки"])
	assert.Equal(t, "240", f["Стоимость аренды"])
	assert.Equal(t, []any{map[string]any{"url": "https://files/front.jpg"}}, f["Фото документа (фронт)"])

	for _, absent := range []string{"Club карта", "Безлимитный километраж", "IDNP", "Фото документа (оборот)", "Доставить по адресу", "Доставка сумма", "Двойной км сумма"} {
		assert.NotContains(t, f, absent)
	}
}

func TestOrderPayload_AddressPickup(t *testing.T) {
	f := OrderPayload{PickupMethod: models.PickupAddress, PickupAddress: "str. Pushkin 1", UnlimitedMileage: true}.Fields()
	assert.NotContains(t, f, "Как забрать машину")
	assert.Equal(t, "Доставка", f["Тип получения"])
	assert.Equal(t, "str. Pushkin 1", f["Доставить по адресу"])
	assert.Equal(t, "да", f["Безлимитный километраж"])
}

func TestCreateContactRequest(t *testing.T) {
	var body struct {
		Fields map[string]any `json:"fields"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appTest/"+DefaultContactTable, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"id":"recC"}`)
	})

	_, err := client.CreateContactRequest(context.Background(), models.ContactRequest{
		FullName: "Ion Popescu", Email: "ion@example.com", Phone: "+37369123456", Message: "Привет",
	}, time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", body.Fields["Дата создания"])
	assert.Equal(t, "Привет", body.Fields["Сообщение"])
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"structured", http.StatusUnprocessableEntity, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Field \"IDNP\" cannot accept the provided value"}}`, `Field "IDNP" cannot accept the provided value`},
		{"code only", http.StatusNotFound, `{"error":"NOT_FOUND"}`, "NOT_FOUND"},
		{"plain text", http.StatusBadGateway, `upstream failed`, "upstream failed"},
		{"empty", http.StatusInternalServerError, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.CreateOrder(context.Background(), OrderPayload{})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchOrders(context.Background())
	var rl RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
}

func TestMisconfigured(t *testing.T) {
	client := NewHTTPClient(Config{})
	_, err := client.FetchCars(context.Background())
	assert.ErrorIs(t, err, ErrMisconfigured)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, defaultRetryAfter, parseRetryAfter(""))
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, defaultRetryAfter, parseRetryAfter("soon"))

	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	got := parseRetryAfter(future)
	assert.True(t, got > 50*time.Second && got <= time.Minute, "got %s", got)
}
