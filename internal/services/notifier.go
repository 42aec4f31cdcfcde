package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/agamariel/rentcar/internal/logger"
	"github.com/agamariel/rentcar/internal/models"
	"github.com/agamariel/rentcar/internal/utils"
	"github.com/agamariel/rentcar/internal/wizard"
)

const defaultSendgridHost = "https://api.sendgrid.com"

// SendgridNotifier отправляет клиенту письмо о принятой заявке.
type SendgridNotifier struct {
	apiKey string
	host   string
	from   *mail.Email
}

// NewSendgridNotifier создаёт отправителя писем. Пустой host - боевой API.
func NewSendgridNotifier(apiKey, fromAddress, host string) *SendgridNotifier {
	if host == "" {
		host = defaultSendgridHost
	}
	return &SendgridNotifier{
		apiKey: apiKey,
		host:   host,
		from:   mail.NewEmail("Rent Car", fromAddress),
	}
}

func (n *SendgridNotifier) OrderConfirmed(ctx context.Context, req wizard.SubmissionRequest, conf *models.OrderConfirmation) error {
	c := req.State.Customer
	if c.Email == "" {
		return nil
	}

	subject, plain := confirmationText(req, conf)
	to := mail.NewEmail(strings.TrimSpace(c.FirstName+" "+c.LastName), c.Email)
	msg := mail.NewSingleEmail(n.from, subject, to, plain, "<p>"+strings.ReplaceAll(html.EscapeString(plain), "\n", "<br>")+"</p>")

	request := sendgrid.GetRequest(n.apiKey, "/v3/mail/send", n.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(msg)

	logger.ExternalServiceCall("sendgrid", "send_confirmation", "record_id", conf.RecordID)
	resp, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err == nil && resp.StatusCode >= 300 {
		err = fmt.Errorf("sendgrid responded with status %d: %s", resp.StatusCode, resp.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send_confirmation", err, "record_id", conf.RecordID)
	return err
}

func confirmationText(req wizard.SubmissionRequest, conf *models.OrderConfirmation) (string, string) {
	st := req.State
	p := conf.Pricing

	var b strings.Builder
	fmt.Fprintf(&b, "Здравствуйте, %s!\n", st.Customer.FirstName)
	fmt.Fprintf(&b, "Ваша заявка %s на %s принята.\n", conf.RecordID, req.Car.Name)
	if st.Dates.Complete() {
		fmt.Fprintf(&b, "Период: с %s по %s, выдача в %s.\n",
			utils.FormatForLocale(*st.Dates.From, "ru"), utils.FormatForLocale(*st.Dates.To, "ru"), st.PickupTime)
	}
	fmt.Fprintf(&b, "Дней: %d, итого: %s %s.\n", p.Days, p.Total.StringFixed(2), p.Currency)
	if len(conf.UploadFailures) > 0 {
		b.WriteString("Фото документа не удалось загрузить, менеджер свяжется с вами.\n")
	}

	return "Заявка на аренду принята", b.String()
}
