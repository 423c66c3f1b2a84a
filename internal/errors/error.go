package errors

import (
	"errors"
)

var (
	// checkout/payment taxonomy; each maps to exactly one user-facing
	// message at the controller boundary.
	ErrValidation    = errors.New("request validation failed")
	ErrEmptyCart     = errors.New("cart is empty")
	ErrPriceMismatch = errors.New("order total does not match catalog pricing")
	ErrGateway       = errors.New("payment processor request failed")
	ErrCardDeclined  = errors.New("card was declined")
	ErrPersistence   = errors.New("order could not be saved")

	ErrEmptyAuth        = errors.New("missing authorization")
	ErrEmptySubject     = errors.New("missing subject")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrUserNotFound     = errors.New("user not found")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrOutOfStock       = errors.New("product is out of stock")
)
