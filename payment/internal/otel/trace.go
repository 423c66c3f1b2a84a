package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/khalidaziz/dukkan/internal/common"
)

var Tracer = otel.Tracer(common.AppPaymentService)
