// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/kon/onlineshop/internal/config"
	"github.com/kon/onlineshop/internal/models"
)

type NotificationService struct {
	config *config.Config
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{config: cfg}
}

var orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>Order Confirmation</h2>
	<p>Thank you for your order!</p>
	<p>Order number: <strong>{{.OrderID}}</strong></p>
	<table border="1" cellpadding="6" cellspacing="0">
		<tr><th>Quantity</th><th>Price</th></tr>
		{{range .Items}}
		<tr><td>{{.Quantity}}</td><td>{{.PriceAtOrder}}</td></tr>
		{{end}}
	</table>
	<p>Total: <strong>{{.TotalAmount}}</strong></p>
	<a href="{{.OrderURL}}">View your order</a>
</body>
</html>`))

// SendOrderConfirmation emails the customer a summary of a freshly placed
// order. Implements the Notifier contract used by OrderService.
func (s *NotificationService) SendOrderConfirmation(order *models.Order, email string) error {
	data := map[string]interface{}{
		"OrderID":     order.ID,
		"Items":       order.Items,
		"TotalAmount": order.TotalAmount,
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	}

	var buf bytes.Buffer
	if err := orderConfirmationTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Order Confirmation #%s", order.ID)
	return s.sendEmail(email, subject, buf.String())
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, nothing to do
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}
