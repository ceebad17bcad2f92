package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/servicecenter-api/internal/infrastructure/payment"
	"github.com/jhoicas/servicecenter-api/pkg/config"
)

func TestRazorpayClient_CreateOrder_EnviaPaiseYBasicAuth(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_123","amount":321019,"currency":"INR","receipt":"INV-1","status":"created"}`))
	}))
	defer srv.Close()

	c := payment.NewRazorpayClient(config.RazorpayConfig{KeyID: "rzp_key", KeySecret: "rzp_secret", BaseURL: srv.URL})
	order, err := c.CreateOrder(context.Background(), decimal.RequireFromString("3210.19"), "INR", "INV-1")
	require.NoError(t, err)

	assert.Equal(t, float64(321019), got["amount"], "monto en paise")
	assert.Equal(t, "INR", got["currency"])
	assert.Equal(t, "order_123", order.ID)
	assert.True(t, order.Amount.Equal(decimal.RequireFromString("3210.19")))
}

func TestRazorpayClient_CreateOrder_ErrorDeLaAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount invalid"}}`))
	}))
	defer srv.Close()

	c := payment.NewRazorpayClient(config.RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: srv.URL})
	_, err := c.CreateOrder(context.Background(), decimal.NewFromInt(1), "INR", "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount invalid")
}

func TestRazorpayClient_SinCredenciales(t *testing.T) {
	c := payment.NewRazorpayClient(config.RazorpayConfig{})
	_, err := c.CreateOrder(context.Background(), decimal.NewFromInt(1), "INR", "r")
	assert.Error(t, err)
}

func TestRazorpayClient_CreateOrder_SinIDDeOrden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":100,"currency":"INR"}`))
	}))
	defer srv.Close()

	c := payment.NewRazorpayClient(config.RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: srv.URL})
	_, err := c.CreateOrder(context.Background(), decimal.NewFromInt(1), "INR", "r")
	assert.Error(t, err)
}

func TestRazorpayClient_CreateOrder_ContextoCancelado(t *testing.T) {
	c := payment.NewRazorpayClient(config.RazorpayConfig{KeyID: "k", KeySecret: "s", BaseURL: "http://127.0.0.1:1"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.CreateOrder(ctx, decimal.NewFromInt(1), "INR", "r")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifySignature(t *testing.T) {
	c := payment.NewRazorpayClient(config.RazorpayConfig{KeyID: "k", KeySecret: "secret"})
	sig := payment.Sign("secret", "order_1", "pay_1")

	assert.True(t, c.VerifySignature("order_1", "pay_1", sig))
	assert.False(t, c.VerifySignature("order_1", "pay_2", sig), "otro payment id")
	assert.False(t, c.VerifySignature("order_1", "pay_1", payment.Sign("otro", "order_1", "pay_1")))
	assert.False(t, c.VerifySignature("order_1", "pay_1", ""))
	assert.True(t, c.VerifySignature("order_1", "pay_1", strings.ToUpper(sig)), "hex en mayúsculas")
}

func TestToPaise_Redondea(t *testing.T) {
	assert.Equal(t, int64(199900), payment.ToPaise(decimal.NewFromInt(1999)))
	assert.Equal(t, int64(1491), payment.ToPaise(decimal.RequireFromString("14.905")))
}

func TestSimulatedGateway_FirmaConSecretoFijo(t *testing.T) {
	g := payment.NewSimulatedGateway()
	order, err := g.CreateOrder(context.Background(), decimal.NewFromInt(500), "INR", "r")
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.True(t, g.VerifySignature(order.ID, "pay_x", payment.Sign(payment.SimulatedGatewaySecret, order.ID, "pay_x")))
}
