package log

const (
	KeyAppName         = "app"
	KeyTag             = "tag"
	KeyProcess         = "process"
	KeyRequestID       = "requestId"
	KeyTraceID         = "traceId"
	KeySpanID          = "spanId"
	KeyConfig          = "config"
	KeyEmail           = "email"
	KeyToken           = "token"
	KeyUserID          = "userId"
	KeyOrderID         = "orderId"
	KeyCheckoutID      = "checkoutId"
	KeyCheckoutState   = "checkoutState"
	KeyPaymentIntentID = "paymentIntentId"
	KeyIdempotencyKey  = "idempotencyKey"
	KeyProductID       = "productId"
	KeyCacheKey        = "cacheKey"
	KeyCartItems       = "cartItems"
	KeyOrders          = "orders"
	KeyOrderItems      = "orderItems"
	KeySummary         = "summary"
	KeyAmount          = "amount"
	KeyCurrency        = "currency"
	KeyDbURL           = "dbUrl"
	KeyRequest         = "request"
	KeyRequestBody     = "requestBody"
	KeyRequestHeader   = "requestHeader"
	KeyRequestHost     = "host"
	KeyRequestIp       = "requesterIP"
	KeyRequestMethod   = "requestMethod"
	KeyRequestURI      = "requestURI"
	KeyRequestURL      = "requestURL"
)
