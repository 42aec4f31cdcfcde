package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agamariel/rentcar/internal/airtable"
	"github.com/agamariel/rentcar/internal/documents"
	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
	"github.com/agamariel/rentcar/internal/wizard"
)

// DefaultNotifyTimeout ограничивает отправку письма о заявке.
const DefaultNotifyTimeout = 30 * time.Second

// SubmissionService отправляет заявку из мастера: фото документов, запись в таблицу, письмо клиенту.
type SubmissionService struct {
	orders   OrderCreator
	uploader documents.Uploader
	notifier Notifier
	now      func() time.Time

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

// NewSubmissionService создаёт сервис отправки. uploader и notifier могут быть nil.
func NewSubmissionService(orders OrderCreator, uploader documents.Uploader, notifier Notifier) *SubmissionService {
	return &SubmissionService{
		orders:   orders,
		uploader: uploader,
		notifier: notifier,
		now:      time.Now,

		notifyTimeout: DefaultNotifyTimeout,
	}
}

var _ wizard.Gateway = (*SubmissionService)(nil)

// Submit загружает документы и создаёт заявку.
// Ошибка загрузки документа не прерывает отправку: сторона попадает в UploadFailures.
func (s *SubmissionService) Submit(ctx context.Context, req wizard.SubmissionRequest) (*models.OrderConfirmation, error) {
	urls, failures := s.uploadDocuments(ctx, req.Documents)

	payload := buildOrderPayload(req, urls)
	rec, err := s.orders.CreateOrder(ctx, payload)
	if err != nil {
		return nil, classifyBackendError(err)
	}

	conf := &models.OrderConfirmation{
		RecordID:       rec.ID,
		CreatedTime:    rec.CreatedTime,
		Pricing:        req.Pricing,
		UploadFailures: failures,
	}
	if conf.CreatedTime.IsZero() {
		conf.CreatedTime = s.now()
	}

	logger.Info("reservation submitted", "record_id", rec.ID, "car_id", req.Car.ID, "upload_failures", len(failures))

	s.notify(ctx, req, *conf)

	return conf, nil
}

// notify отправляет письмо в фоне, не задерживая ответ мастеру.
// Отмена запроса не прерывает отправку, её ограничивает notifyTimeout.
func (s *SubmissionService) notify(ctx context.Context, req wizard.SubmissionRequest, conf models.OrderConfirmation) {
	if s.notifier == nil {
		return
	}
	req.Documents = nil

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
		defer cancel()

		if err := s.notifier.OrderConfirmed(ctx, req, &conf); err != nil {
			logger.Warn("failed to send order confirmation", "record_id", conf.RecordID, "error", err)
		}
	}()
}

// Wait ждёт завершения отправки писем. Вызывается при остановке сервера.
func (s *SubmissionService) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("shutdown before pending confirmation e-mails were sent")
	}
}

// uploadDocuments загружает стороны документа параллельно и независимо друг от друга.
func (s *SubmissionService) uploadDocuments(ctx context.Context, docs []models.Document) (map[models.DocumentSide]string, []models.DocumentSide) {
	urls := make(map[models.DocumentSide]string, len(docs))
	if len(docs) == 0 {
		return urls, nil
	}
	if s.uploader == nil {
		sides := make([]models.DocumentSide, 0, len(docs))
		for _, d := range docs {
			sides = append(sides, d.Side)
		}
		logger.Warn("document storage is not configured, skipping uploads", "documents", len(docs))
		return urls, sides
	}

	results := make([]string, len(docs))
	var g errgroup.Group
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			results[i] = s.uploadOne(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	var failures []models.DocumentSide
	for i, doc := range docs {
		if results[i] == "" {
			failures = append(failures, doc.Side)
			continue
		}
		urls[doc.Side] = results[i]
	}
	return urls, failures
}

func (s *SubmissionService) uploadOne(ctx context.Context, doc models.Document) string {
	data, name, contentType, err := documents.Optimize(doc.Data, doc.FileName, doc.ContentType)
	if err != nil {
		logger.Warn("document optimization failed, uploading original", "side", doc.Side, "error", err)
		data, name, contentType = doc.Data, doc.FileName, doc.ContentType
	}

	url, err := s.uploader.Upload(ctx, doc.Side.Folder(), name, contentType, data)
	if err != nil {
		logger.Warn("document upload failed", "side", doc.Side, "error", err)
		return ""
	}
	return url
}

func buildOrderPayload(req wizard.SubmissionRequest, urls map[models.DocumentSide]string) airtable.OrderPayload {
	st := req.State
	p := req.Pricing

	payload := airtable.OrderPayload{
		CustomerName:     strings.TrimSpace(st.Customer.FirstName + " " + st.Customer.LastName),
		Phone:            st.Customer.CountryCode + st.Customer.Phone,
		Email:            st.Customer.Email,
		CarID:            req.Car.ID,
		PickupTime:       st.PickupTime,
		IDNP:             st.Customer.IDNP,
		PickupMethod:     st.PickupMethod,
		UnlimitedMileage: st.UnlimitedMileage,
		GoldCard:         st.GoldCard,
		ClubCard:         st.ClubCard,
		PaymentMethod:    st.PaymentMethod,
		PhotoFrontURL:    urls[models.DocumentFront],
		PhotoBackURL:     urls[models.DocumentBack],
		Subtotal:         &p.Subtotal,
		TotalCost:        &p.Total,
	}
	// Суммы невыбранных опций не передаются.
	if st.UnlimitedMileage {
		payload.MileageCost = &p.MileageFee
	}
	if st.PickupMethod.RequiresDelivery() {
		payload.DeliveryCost = &p.DeliveryFee
	}
	if st.GoldCard || st.ClubCard {
		payload.DiscountAmount = &p.Discount
	}
	if st.Dates.From != nil {
		payload.StartDate = utils.ToLocalDateKey(*st.Dates.From)
	}
	if st.Dates.To != nil {
		payload.EndDate = utils.ToLocalDateKey(*st.Dates.To)
	}
	if st.PickupMethod == models.PickupAddress {
		payload.PickupAddress = st.PickupAddress
	}
	if st.PaymentMethod == models.PaymentOther {
		payload.PaymentOther = st.PaymentOther
	}
	return payload
}
