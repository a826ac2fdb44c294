package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyPaid       = errors.New("already paid")
	ErrContractNotActive = errors.New("contract not active")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDepositLimit      = errors.New("deposit limit exceeded")
)
