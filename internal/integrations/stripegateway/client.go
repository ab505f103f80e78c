// Package stripegateway реализует платежный шлюз поверх Stripe Checkout.
// Сессия создается под внутренний платежный токен; соответствие
// токен -> session_id хранится в Redis с TTL, так как Stripe не умеет
// искать сессии по client_reference_id.
package stripegateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

const sessionKeyPrefix = "agenda:stripe:session:"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client платежный шлюз Stripe Checkout
type Client struct {
	redis      *redis.Client
	currency   string
	successURL string
	cancelURL  string
	sessionTTL time.Duration
	log        Logger
}

// NewClient создает новый экземпляр шлюза.
// secretKey устанавливается глобально, как того требует stripe-go.
func NewClient(secretKey, currency, successURL, cancelURL string, sessionTTL time.Duration, redisClient *redis.Client, log Logger) *Client {
	stripe.Key = secretKey
	return &Client{
		redis:      redisClient,
		currency:   currency,
		successURL: successURL,
		cancelURL:  cancelURL,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// CreateHold создает Checkout Session на сумму бронирования и привязывает
// её к платежному токену. Возвращает URL страницы оплаты.
func (c *Client) CreateHold(ctx context.Context, token string, amount float64, description string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(token),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(c.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					// Stripe принимает суммы в минимальных единицах валюты
					UnitAmount: stripe.Int64(int64(amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.IdempotencyKey = stripe.String(token)

	sess, err := checkoutsession.New(params)
	if err != nil {
		c.log.Error("CreateHold: checkout session create failed for token=%s: %v", token, err)
		return "", fmt.Errorf("%w: CreateHold - create session: %v", ErrInternal, err)
	}

	if err := c.redis.Set(ctx, sessionKeyPrefix+token, sess.ID, c.sessionTTL).Err(); err != nil {
		c.log.Error("CreateHold: failed to store session mapping for token=%s: %v", token, err)
		return "", fmt.Errorf("%w: CreateHold - store session mapping: %v", ErrInternal, err)
	}

	c.log.Info("CreateHold: session=%s created for token=%s, amount=%.2f", sess.ID, token, amount)
	return sess.URL, nil
}

// Verify проверяет, что платеж по токену завершен
func (c *Client) Verify(ctx context.Context, token string) (bool, error) {
	sessionID, err := c.redis.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.log.Warn("Verify: no session mapping for token=%s", token)
			return false, ErrSessionNotFound
		}
		return false, fmt.Errorf("%w: Verify - load session mapping: %v", ErrInternal, err)
	}

	sess, err := checkoutsession.Get(sessionID, nil)
	if err != nil {
		c.log.Error("Verify: failed to get session=%s: %v", sessionID, err)
		return false, fmt.Errorf("%w: Verify - get session: %v", ErrInternal, err)
	}

	paid := sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
		sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
	c.log.Info("Verify: token=%s, session=%s, payment_status=%s", token, sessionID, sess.PaymentStatus)
	return paid, nil
}

// NopGateway шлюз-заглушка для режима libre и тестовых окружений:
// hold всегда создается, любой платеж считается подтвержденным
type NopGateway struct{}

func (NopGateway) CreateHold(context.Context, string, float64, string) (string, error) {
	return "", nil
}

func (NopGateway) Verify(context.Context, string) (bool, error) { return true, nil }
