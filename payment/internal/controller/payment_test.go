package controller

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/khalidaziz/dukkan/internal/common/validate"
	"github.com/khalidaziz/dukkan/internal/payment"
	"github.com/khalidaziz/dukkan/payment/internal/service"
)

type fakeGateway struct {
	createCalls int
}

func (g *fakeGateway) CreateIntent(
	_ context.Context,
	param payment.CreateIntentParams,
) (payment.Intent, error) {
	g.createCalls++
	return payment.Intent{
		ID:           "pi_fake_1",
		ClientSecret: "pi_fake_1_secret",
		Amount:       param.Amount,
		Currency:     param.Currency,
		Status:       payment.IntentStatusRequiresConfirmation,
	}, nil
}

func (g *fakeGateway) ConfirmIntent(
	_ context.Context,
	param payment.ConfirmIntentParams,
) (payment.Intent, error) {
	return payment.Intent{}, fmt.Errorf("not used")
}

func TestCreateIntentRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount": 0, "currency": "aed"}`},
		{"negative amount", `{"amount": -10, "currency": "aed"}`},
		{"missing amount", `{"currency": "aed"}`},
		{"missing currency", `{"amount": 130.25}`},
		{"malformed body", `{"amount": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{}
			ctrl := PaymentController{
				service:   service.NewPaymentService(gateway),
				validator: validate.New(),
			}

			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(
				http.MethodPost,
				"/api/create-payment-intent",
				strings.NewReader(tt.body),
			)
			ctrl.CreateIntent(recorder, req)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, 0, gateway.createCalls, "the processor must not be called")
		})
	}
}

func TestCreateIntentAcceptsValidRequest(t *testing.T) {
	gateway := &fakeGateway{}
	ctrl := PaymentController{
		service:   service.NewPaymentService(gateway),
		validator: validate.New(),
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(
		http.MethodPost,
		"/api/create-payment-intent",
		strings.NewReader(`{"amount": 130.25, "currency": "aed"}`),
	)
	ctrl.CreateIntent(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, gateway.createCalls)
	assert.Contains(t, recorder.Body.String(), "pi_fake_1_secret")
}
