package notify

import (
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFormatter() *Formatter {
	return NewFormatter(Config{
		BusinessName:  "VERDULERIA LA LUNA",
		BusinessTitle: "Verduleria La Luna",
		Website:       "https://laluna123.vercel.app/",
	})
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0341-456-9846", "5493414569846"},
		{"+54 9 341 456-9846", "5493414569846"},
		{"54 341 4569846", "5493414569846"},
		{"(341) 456 9846", "5493414569846"},
		{"3414569846", "5493414569846"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestFormatARS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"15000.50", "$ 15.000,50"},
		{"0", "$ 0,00"},
		{"999.999", "$ 1.000,00"},
		{"1234567.8", "$ 1.234.567,80"},
		{"100", "$ 100,00"},
		{"-2500", "-$ 2.500,00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatARS(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestOrderLink(t *testing.T) {
	msg := OrderMessage{
		OrderID:      "0192f0c4-8e6b-7d3a-9c1e-5a4b3c2d1e0f",
		Description:  "2kg papa & 1kg tomate",
		Total:        decimal.RequireFromString("15000.50"),
		CustomerName: "Ana",
		Phone:        "0341-456-9846",
		Address:      "San Martin 123",
	}

	link := testFormatter().OrderLink(msg)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/5493414569846", u.Path)
	assert.NotContains(t, u.RawQuery, "+")

	text := u.Query().Get("text")
	assert.True(t, strings.HasPrefix(text, "*VERDULERIA LA LUNA*\n\nHola *Ana*!"))
	assert.Contains(t, text, msg.OrderID)
	assert.Contains(t, text, "*TOTAL: $ 15.000,50*")
	assert.Contains(t, text, "2kg papa & 1kg tomate")
	assert.Contains(t, text, "*DIRECCION DE ENTREGA:*\nSan Martin 123")
	assert.True(t, strings.HasSuffix(text, "_Verduleria La Luna_\nWeb: https://laluna123.vercel.app/"))
}

func TestOrderText_WithoutAddress(t *testing.T) {
	text := testFormatter().OrderText(OrderMessage{
		OrderID:      "o-1",
		Description:  "bolsa surtida",
		Total:        decimal.NewFromInt(3000),
		CustomerName: "Luis",
	})

	assert.NotContains(t, text, "DIRECCION DE ENTREGA")
	assert.Contains(t, text, "*TOTAL: $ 3.000,00*\n\nMuchas gracias por tu compra!")
}

func TestNewFormatter_BaseURL(t *testing.T) {
	f := NewFormatter(Config{BaseURL: "https://api.whatsapp.com/send"})
	link := f.OrderLink(OrderMessage{Phone: "5493411234567", Total: decimal.Zero})
	assert.True(t, strings.HasPrefix(link, "https://api.whatsapp.com/send/5493411234567?text="))
}
