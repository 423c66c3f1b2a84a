package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v79"

	inErrors "github.com/khalidaziz/dukkan/internal/errors"
)

func TestMapProcessorErrorCardDeclined(t *testing.T) {
	err := mapProcessorError(&stripe.Error{
		Type: stripe.ErrorTypeCard,
		Msg:  "Your card was declined.",
	})
	assert.ErrorIs(t, err, inErrors.ErrCardDeclined)
	assert.NotErrorIs(t, err, inErrors.ErrGateway)
}

func TestMapProcessorErrorAPIFailure(t *testing.T) {
	err := mapProcessorError(&stripe.Error{
		Type: stripe.ErrorTypeAPI,
		Msg:  "An error occurred with our connection to Stripe.",
	})
	assert.ErrorIs(t, err, inErrors.ErrGateway)
	assert.NotErrorIs(t, err, inErrors.ErrCardDeclined)
}

func TestMapProcessorErrorNonProcessor(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := mapProcessorError(cause)
	assert.ErrorIs(t, err, inErrors.ErrGateway)
	assert.True(t, errors.Is(err, cause))
}
