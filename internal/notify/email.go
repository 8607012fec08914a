// Package notify sends transactional email to registered customers.
package notify

import (
	"fmt"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"shopbot/internal/models"
)

type EmailNotifier struct {
	client *sendgrid.Client
	from   string
}

func NewEmailNotifier(apiKey, from string) *EmailNotifier {
	return &EmailNotifier{
		client: sendgrid.NewSendClient(apiKey),
		from:   from,
	}
}

// PaymentConfirmed emails the customer that their payment settled and the
// order is queued for delivery.
func (n *EmailNotifier) PaymentConfirmed(email string, order *models.Order, product *models.Product) error {
	from := mail.NewEmail("Shop", n.from)
	to := mail.NewEmail(order.UserName, email)
	subject := fmt.Sprintf("Payment confirmed for order %s", order.OrderID)

	description := ""
	if product != nil {
		description = product.Description
	}
	plain := fmt.Sprintf(
		"Thank you for your purchase!\n\nOrder ID: %s\nProduct: %s\nAmount paid: %s USD\n\n%s\n\nYour order will be delivered soon.",
		order.OrderID, order.Item, order.Amount.String(), description,
	)
	html := fmt.Sprintf(
		"<strong>Thank you for your purchase!</strong><br><br>Order ID: %s<br>Product: %s<br>Amount paid: %s USD<br><br>%s<br><br>Your order will be delivered soon.",
		order.OrderID, order.Item, order.Amount.String(), description,
	)

	resp, err := n.client.Send(mail.NewSingleEmail(from, subject, to, plain, html))
	if err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send confirmation email: sendgrid returned %d", resp.StatusCode)
	}
	return nil
}
