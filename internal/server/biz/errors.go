package biz

import "errors"

var (
	ErrInvalidJWT      = errors.New("invalid jwt token")
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrInternal        = errors.New("server internal error, please try again later")
)
