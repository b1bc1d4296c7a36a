package service

import "errors"

var (
	ErrAlreadyRegistered     = errors.New("participant already registered")
	ErrNotRegistered         = errors.New("participant not registered or inactive")
	ErrNotAuthorized         = errors.New("caller not authorized")
	ErrInvalidInput          = errors.New("required field is empty")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientBalance   = errors.New("insufficient points balance")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrCouponUnavailable     = errors.New("coupon inactive or sold out")
	ErrAlreadyRedeemed       = errors.New("redemption already completed")
	ErrNotFound              = errors.New("record not found")
	ErrNotOwner              = errors.New("record belongs to another participant")
	ErrPaused                = errors.New("program is paused")
	ErrInvalidConfig         = errors.New("invalid tier configuration")
)
