// Package notify builds outbound customer messages. Nothing here performs I/O:
// the caller presents or opens the returned link.
package notify

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Argentina mobile numbers on WhatsApp are written 54 9 <area> <number>.
const (
	countryCode   = "54"
	mobilePrefix  = countryCode + "9"
	trunkPrefix   = "0"
	defaultLinkTo = "https://wa.me/"
)

var phoneNoise = regexp.MustCompile(`[\s\-\(\)\+]`)

// Config holds the business identity printed in messages.
type Config struct {
	BusinessName  string
	BusinessTitle string
	Website       string
	BaseURL       string
}

// OrderMessage is the data rendered into an order confirmation.
type OrderMessage struct {
	OrderID      string
	Description  string
	Total        decimal.Decimal
	CustomerName string
	Phone        string
	Address      string
}

// Formatter renders WhatsApp deep links.
type Formatter struct {
	cfg Config
}

// NewFormatter creates a formatter. An empty BaseURL falls back to wa.me.
func NewFormatter(cfg Config) *Formatter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLinkTo
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	return &Formatter{cfg: cfg}
}

// OrderLink returns the deep link for an order confirmation.
func (f *Formatter) OrderLink(msg OrderMessage) string {
	phone := NormalizePhone(msg.Phone)
	return f.cfg.BaseURL + phone + "?text=" + encodeURIComponent(f.OrderText(msg))
}

// OrderText renders the confirmation message body.
func (f *Formatter) OrderText(msg OrderMessage) string {
	var b strings.Builder
	b.WriteString("*" + f.cfg.BusinessName + "*\n\n")
	b.WriteString("Hola *" + msg.CustomerName + "*!\n\n")
	b.WriteString("Tu pedido fue registrado exitosamente.\n\n")
	b.WriteString("*PEDIDO N°:* " + msg.OrderID + "\n\n")
	b.WriteString("*DETALLE DEL PEDIDO:*\n" + msg.Description + "\n\n")
	b.WriteString("*TOTAL: " + FormatARS(msg.Total) + "*\n\n")
	if addr := strings.TrimSpace(msg.Address); addr != "" {
		b.WriteString("*DIRECCION DE ENTREGA:*\n" + addr + "\n\n")
	}
	b.WriteString("Muchas gracias por tu compra!\n\n")
	b.WriteString("_" + f.cfg.BusinessTitle + "_")
	if f.cfg.Website != "" {
		b.WriteString("\nWeb: " + f.cfg.Website)
	}
	return b.String()
}

// NormalizePhone strips formatting and forces the 549 mobile prefix.
func NormalizePhone(raw string) string {
	p := phoneNoise.ReplaceAllString(raw, "")
	switch {
	case strings.HasPrefix(p, mobilePrefix):
		return p
	case strings.HasPrefix(p, countryCode):
		return mobilePrefix + p[len(countryCode):]
	case strings.HasPrefix(p, trunkPrefix):
		return mobilePrefix + p[len(trunkPrefix):]
	default:
		return mobilePrefix + p
	}
}

// FormatARS renders an amount the way es-AR prints pesos: "$ 15.000,50".
func FormatARS(amount decimal.Decimal) string {
	s := amount.Round(2).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		grouped.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if grouped.Len() > 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteString(intPart[i : i+3])
	}
	return sign + "$ " + grouped.String() + "," + frac
}

// encodeURIComponent escapes like the browser function of the same name,
// which WhatsApp clients decode reliably (spaces as %20, never "+").
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	for _, r := range []struct{ from, to string }{
		{"%21", "!"}, {"%27", "'"}, {"%28", "("}, {"%29", ")"}, {"%2A", "*"},
	} {
		escaped = strings.ReplaceAll(escaped, r.from, r.to)
	}
	return escaped
}
