package common

const (
	AppStorefront      = "dukkan-storefront"
	AppCartService     = "dukkan-cart"
	AppCheckoutService = "dukkan-checkout"
	AppOrderService    = "dukkan-order"
	AppPaymentService  = "dukkan-payment"
	AppProductService  = "dukkan-product"
	AppUserService     = "dukkan-user"
	AudienceUser       = "audience-user"

	// compose service names double as hostnames on the internal network
	UrlCartService    = "http://dukkan-cart:8001/api/cart"
	UrlOrderService   = "http://dukkan-order:8002/api/orders"
	UrlPaymentService = "http://dukkan-payment:8003/api/create-payment-intent"
	UrlProductService = "http://dukkan-product:8004/api/products"
	UrlUserService    = "http://dukkan-user:8005/api/users"
)
