package paymentcontroller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/auth"
	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/payments"
	"github.com/Ashish5180/vibe-bites/telemetry"
	"github.com/Ashish5180/vibe-bites/testutil"
	"github.com/Ashish5180/vibe-bites/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type fakeGateway struct {
	mu      sync.Mutex
	created []payments.CreateParams
	intents map[string]*payments.Intent
	byOrder map[string]*payments.Intent
	event   *payments.Event
	err     error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: map[string]*payments.Intent{}, byOrder: map[string]*payments.Intent{}}
}

func (g *fakeGateway) CreateIntent(_ context.Context, p payments.CreateParams) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.created = append(g.created, p)
	id := fmt.Sprintf("pi_%d", len(g.created))
	return &payments.Intent{ID: id, ClientSecret: id + "_secret", Amount: p.Amount, Currency: p.Currency}, nil
}

func (g *fakeGateway) Retrieve(_ context.Context, id string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.intents[id]
	if !ok {
		return nil, payments.ErrNotFound
	}
	return in, nil
}

func (g *fakeGateway) FindByOrder(_ context.Context, orderID string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	in, ok := g.byOrder[orderID]
	if !ok {
		return nil, payments.ErrNotFound
	}
	return in, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, signature string) (*payments.Event, error) {
	if signature != "good" {
		return nil, payments.ErrInvalidSignature
	}
	return g.event, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field string `json:"field"`
	} `json:"errors"`
}

type fixture struct {
	db      *gorm.DB
	gateway *fakeGateway
	handler *Handler
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	gw := newFakeGateway()
	return &fixture{
		db:      db,
		gateway: gw,
		handler: &Handler{DB: db, Gateway: gw, Metrics: telemetry.Noop(), Log: zap.NewNop()},
	}
}

func (f *fixture) router(user *models.User) *gin.Engine {
	r := gin.New()
	r.POST("/payments/webhook", f.handler.Webhook)
	authed := r.Group("/payments", func(c *gin.Context) {
		auth.SetUser(c, user)
		c.Next()
	})
	authed.POST("/create-intent", f.handler.CreateIntent)
	authed.POST("/confirm", f.handler.Confirm)
	authed.GET("/:orderId", f.handler.GetPaymentStatus)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any, header ...string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func createOrder(t *testing.T, db *gorm.DB, user *models.User) *models.Order {
	t.Helper()
	o := &models.Order{
		OrderNumber:   fmt.Sprintf("VB%d", time.Now().UnixNano()),
		UserID:        user.ID,
		PaymentMethod: models.PaymentMethodCard,
		PaymentStatus: models.PaymentStatusPending,
		Subtotal:      decimal.NewFromInt(100),
		ShippingCost:  decimal.Zero,
		Discount:      decimal.Zero,
		Total:         decimal.NewFromInt(100),
		Status:        models.OrderStatusPending,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}

func TestCreateIntent(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	r := f.router(user)

	status, env := do(t, r, http.MethodPost, "/payments/create-intent", gin.H{"amount": 249.5})
	require.Equal(t, http.StatusOK, status, env.Message)

	var data struct {
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "pi_1", data.PaymentIntentID)
	assert.Equal(t, "pi_1_secret", data.ClientSecret)

	require.Len(t, f.gateway.created, 1)
	p := f.gateway.created[0]
	assert.Equal(t, "inr", p.Currency)
	assert.Equal(t, user.ID, p.UserID)
	assert.Empty(t, p.OrderID)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("249.5")))
}

func TestCreateIntentValidation(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	r := f.router(user)

	status, env := do(t, r, http.MethodPost, "/payments/create-intent", gin.H{"amount": 0.5, "currency": "eur"})
	require.Equal(t, http.StatusBadRequest, status)
	fields := map[string]bool{}
	for _, e := range env.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["amount"])
	assert.True(t, fields["currency"])
	assert.Empty(t, f.gateway.created)
}

func TestCreateIntentForOrder(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	other := testutil.CreateUser(t, f.db, "ravi@test.dev", models.RoleUser)
	order := createOrder(t, f.db, owner)
	body := gin.H{"amount": 100, "currency": "usd", "orderId": fmt.Sprint(order.ID)}

	status, _ := do(t, f.router(other), http.MethodPost, "/payments/create-intent", body)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, f.router(owner), http.MethodPost, "/payments/create-intent", body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, f.gateway.created, 1)
	assert.Equal(t, fmt.Sprint(order.ID), f.gateway.created[0].OrderID)
	assert.Equal(t, "usd", f.gateway.created[0].Currency)
}

func TestCreateIntentGatewayError(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = errors.New("stripe down")
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)

	status, env := do(t, f.router(user), http.MethodPost, "/payments/create-intent", gin.H{"amount": 10})
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Error creating payment intent", env.Message)
}

func TestConfirm(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	f.gateway.intents["pi_ok"] = &payments.Intent{ID: "pi_ok", Amount: decimal.NewFromInt(120), Currency: "inr", Status: "succeeded"}
	f.gateway.intents["pi_wait"] = &payments.Intent{ID: "pi_wait", Amount: decimal.NewFromInt(120), Currency: "inr", Status: "requires_payment_method"}
	r := f.router(user)

	status, env := do(t, r, http.MethodPost, "/payments/confirm", gin.H{"paymentIntentId": "pi_ok"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Payment confirmed successfully", env.Message)
	var data struct {
		Amount decimal.Decimal `json:"amount"`
		Status string          `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Amount.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "succeeded", data.Status)

	status, env = do(t, r, http.MethodPost, "/payments/confirm", gin.H{"paymentIntentId": "pi_wait"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Payment not completed", env.Message)

	status, _ = do(t, r, http.MethodPost, "/payments/confirm", gin.H{"paymentIntentId": "pi_nope"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, r, http.MethodPost, "/payments/confirm", gin.H{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetPaymentStatus(t *testing.T) {
	f := newFixture(t)
	owner := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	admin := testutil.CreateUser(t, f.db, "admin@test.dev", models.RoleAdmin)
	other := testutil.CreateUser(t, f.db, "ravi@test.dev", models.RoleUser)
	order := createOrder(t, f.db, owner)
	unpaid := createOrder(t, f.db, owner)
	created := time.Unix(1700000000, 0).UTC()
	f.gateway.byOrder[fmt.Sprint(order.ID)] = &payments.Intent{
		ID: "pi_9", Amount: decimal.NewFromInt(100), Currency: "inr", Status: "succeeded", Created: created,
	}
	path := fmt.Sprintf("/payments/%d", order.ID)

	for _, u := range []*models.User{owner, admin} {
		status, env := do(t, f.router(u), http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, status, u.Email)
		var data struct {
			PaymentIntentID string    `json:"paymentIntentId"`
			Created         time.Time `json:"created"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "pi_9", data.PaymentIntentID)
		assert.True(t, created.Equal(data.Created))
	}

	status, env := do(t, f.router(other), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Payment not found", env.Message)

	status, _ = do(t, f.router(owner), http.MethodGet, fmt.Sprintf("/payments/%d", unpaid.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func webhook(t *testing.T, r http.Handler, signature string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewBufferString(`{"id":"evt"}`))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func TestWebhookSucceeded(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	order := createOrder(t, f.db, user)
	f.gateway.event = &payments.Event{
		ID:   "evt_1",
		Type: payments.EventSucceeded,
		Intent: &payments.Intent{
			ID:       "pi_1",
			Status:   "succeeded",
			Metadata: map[string]string{"orderId": fmt.Sprint(order.ID)},
		},
	}
	r := f.router(user)

	// Redelivery leaves the same state behind.
	for i := 0; i < 2; i++ {
		status, body := webhook(t, r, "good")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["received"])
	}

	var stored models.Order
	require.NoError(t, f.db.Preload("StatusHistory").First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusConfirmed, stored.Status)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestWebhookFailed(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	order := createOrder(t, f.db, user)
	f.gateway.event = &payments.Event{
		ID:     "evt_2",
		Type:   payments.EventFailed,
		Intent: &payments.Intent{ID: "pi_2", Metadata: map[string]string{"orderId": fmt.Sprint(order.ID)}},
	}

	status, _ := webhook(t, f.router(user), "good")
	require.Equal(t, http.StatusOK, status)

	var stored models.Order
	require.NoError(t, f.db.First(&stored, order.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestWebhookAcknowledgesUnrelatedEvents(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)
	r := f.router(user)

	f.gateway.event = &payments.Event{ID: "evt_3", Type: "charge.refunded"}
	status, _ := webhook(t, r, "good")
	assert.Equal(t, http.StatusOK, status)

	f.gateway.event = &payments.Event{
		ID:     "evt_4",
		Type:   payments.EventSucceeded,
		Intent: &payments.Intent{ID: "pi_4", Metadata: map[string]string{"orderId": payments.CartPayment}},
	}
	status, _ = webhook(t, r, "good")
	assert.Equal(t, http.StatusOK, status)

	f.gateway.event.Intent.Metadata["orderId"] = "999"
	status, _ = webhook(t, r, "good")
	assert.Equal(t, http.StatusOK, status)
}

func TestWebhookBadSignature(t *testing.T) {
	f := newFixture(t)
	user := testutil.CreateUser(t, f.db, "asha@test.dev", models.RoleUser)

	status, body := webhook(t, f.router(user), "forged")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}
