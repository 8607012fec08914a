package store

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrAlreadyRegistered = errors.New("customer already registered")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrOutOfStock        = errors.New("product out of stock")
	ErrTerminalStatus    = errors.New("payment already in terminal status")
)
