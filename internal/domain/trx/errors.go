package trx

import "errors"

// ErrInvalidPolicy COMBINED_STREAK_POLICY 값 오류
var ErrInvalidPolicy = errors.New("invalid combined streak policy")
