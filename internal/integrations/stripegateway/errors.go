package stripegateway

import "errors"

var (
	// ErrSessionNotFound возвращается, когда по токену нет платежной сессии
	ErrSessionNotFound = errors.New("stripegateway: payment session not found")

	// ErrInternal возвращается при ошибках Stripe API или хранилища сессий
	ErrInternal = errors.New("stripegateway: internal error")
)
