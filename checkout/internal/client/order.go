package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/khalidaziz/dukkan/checkout/internal/otel"
	"github.com/khalidaziz/dukkan/internal/common"
	inHttp "github.com/khalidaziz/dukkan/internal/http"
	"github.com/khalidaziz/dukkan/internal/log"
	inOtel "github.com/khalidaziz/dukkan/internal/otel"
	orderRequest "github.com/khalidaziz/dukkan/order/pkg/request"
	orderResponse "github.com/khalidaziz/dukkan/order/pkg/response"
)

// OrderClient persists orders through the order service. The caller's
// bearer token and request id ride along so the downstream call is
// authorized and correlated.
type OrderClient struct {
	url string
}

func NewOrderClient(url string) *OrderClient {
	if url == "" {
		url = common.UrlOrderService
	}
	return &OrderClient{url: url}
}

func (cl *OrderClient) SaveOrder(
	c context.Context,
	param orderRequest.SaveOrder,
) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderClient SaveOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderClient SaveOrder").
		Str(log.KeyOrderID, param.ID).
		Logger()

	body, err := json.Marshal(param)
	if err != nil {
		err = fmt.Errorf("failed marshaling order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	req, err := http.NewRequestWithContext(c, http.MethodPost, cl.url, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed creating order request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	req.Header.Add(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	req.Header.Add(inHttp.KeyHeaderRequestId, log.RequestIDFromContext(c))
	if token := common.RawTokenFromContext(c); token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}

	logger.Info().Msg("posting order")
	resp, err := otelhttp.DefaultClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed posting order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		err = fmt.Errorf("order service responded status=%d", resp.StatusCode)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger.Info().Msg("posted order")

	envelope := struct {
		Data struct {
			Order orderResponse.Order `json:"order"`
		} `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		err = fmt.Errorf("failed decoding order response with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	return envelope.Data.Order, nil
}
