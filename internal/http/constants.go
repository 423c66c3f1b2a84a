package http

const (
	HeaderContentType = "Content-Type"
	HeaderValueJson   = "application/json"

	KeyHeaderRequestId = "X-Request-Id"
)
