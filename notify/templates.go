package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type Kind string

const (
	EmailVerification Kind = "email_verification"
	PasswordReset     Kind = "password_reset"
	OrderConfirmation Kind = "order_confirmation"
	OrderShipped      Kind = "order_shipped"
)

var templates = map[Kind]*template.Template{}

func init() {
	for _, k := range []Kind{EmailVerification, PasswordReset, OrderConfirmation, OrderShipped} {
		templates[k] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(k)+".html"))
	}
}

// LinkData feeds the verification and reset emails.
type LinkData struct {
	Name string
	URL  string
}

type OrderData struct {
	Name        string
	OrderNumber string
	OrderDate   string
	Total       string
}

type ShipmentData struct {
	Name              string
	OrderNumber       string
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery string
}

// Message is a rendered email ready for a Sender.
type Message struct {
	To      string
	Subject string
	HTML    string
}

func render(kind Kind, to, subject string, data any) (Message, error) {
	t, ok := templates[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", kind)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}

func VerificationEmail(to string, d LinkData) (Message, error) {
	return render(EmailVerification, to, "Verify your VIBE BITES account", d)
}

func PasswordResetEmail(to string, d LinkData) (Message, error) {
	return render(PasswordReset, to, "Reset your VIBE BITES password", d)
}

func OrderConfirmationEmail(to string, d OrderData) (Message, error) {
	return render(OrderConfirmation, to, "Order Confirmation - "+d.OrderNumber, d)
}

// Shipment defaults used when the admin leaves a field blank.
const (
	DefaultCarrier           = "Standard Shipping"
	DefaultEstimatedDelivery = "3-5 business days"
	DefaultTrackingNumber    = "N/A"
)

// OrderShippedEmail fills blank shipment fields with the defaults.
func OrderShippedEmail(to string, d ShipmentData) (Message, error) {
	if d.TrackingNumber == "" {
		d.TrackingNumber = DefaultTrackingNumber
	}
	if d.Carrier == "" {
		d.Carrier = DefaultCarrier
	}
	if d.EstimatedDelivery == "" {
		d.EstimatedDelivery = DefaultEstimatedDelivery
	}
	return render(OrderShipped, to, "Your order has been shipped - "+d.OrderNumber, d)
}
