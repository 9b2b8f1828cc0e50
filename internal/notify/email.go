// Package notify delivers best-effort notifications about new orders.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/quickparts/storefront/internal/document"
	"github.com/quickparts/storefront/internal/domain/cart"
	"github.com/quickparts/storefront/internal/domain/order"
)

// Config holds SMTP settings for the email notifier. An empty Username
// disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	To       string
	Company  string
}

// EmailNotifier emails the back office about each new order. Delivery is
// best-effort: the checkout flow logs failures and moves on.
type EmailNotifier struct {
	cfg Config
	lg  *zap.Logger

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates an EmailNotifier with the given settings.
func NewEmailNotifier(cfg Config, lg *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:  cfg,
		lg:   lg.Named("notify"),
		send: smtp.SendMail,
	}
}

// OrderCreated sends the new-order email. It is a no-op when credentials are
// not configured.
func (n *EmailNotifier) OrderCreated(_ context.Context, o *order.Order) error {
	if n.cfg.Username == "" || n.cfg.Password == "" {
		n.lg.Debug("email credentials not configured, skipping notification")
		return nil
	}

	subject := fmt.Sprintf("New Order Received - %s (Order #%.8s)", n.cfg.Company, o.ID)
	body := buildBody(n.cfg.Company, o)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.Username)
	fmt.Fprintf(&msg, "To: %s\r\n", n.cfg.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	if err := n.send(addr, auth, n.cfg.Username, []string{n.cfg.To}, []byte(msg.String())); err != nil {
		return errors.Wrap(err, "send order notification")
	}

	n.lg.Info("order notification sent", zap.String("order_id", o.ID))
	return nil
}

func buildBody(company string, o *order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new order has been received on %s.\n\n", company)
	fmt.Fprintf(&b, "Order ID: %s\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", o.Customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", o.Customer.Phone)
	fmt.Fprintf(&b, "Email: %s\n", orDefault(o.Customer.Email))
	fmt.Fprintf(&b, "Company: %s\n\n", orDefault(o.Customer.Company))

	b.WriteString("Items Ordered:\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "- %s (%s) - Qty: %d - Rs. %s\n",
			it.PartName, it.PartCode, it.Quantity, document.FormatAmount(cart.LineTotal(it)))
	}

	fmt.Fprintf(&b, "\nTotal Amount: Rs. %s\n", document.FormatAmount(o.TotalAmount))
	fmt.Fprintf(&b, "Order Date: %s\n\n", o.CreatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString("Log in to the admin dashboard to process the order.\n")
	return b.String()
}

func orDefault(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
