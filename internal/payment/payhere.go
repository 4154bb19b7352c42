package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bioacademy-lk/platform-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PayHereGateway builds signed checkout requests for PayHere's redirect-based
// checkout and verifies its asynchronous notifications. The shared merchant
// secret is used as an HMAC-SHA256 key; amounts are always formatted to
// exactly two decimal places before signing so that request-time and
// verification-time hashes are computed over identical input.
type PayHereGateway struct {
	merchantID     string
	merchantSecret string
	checkoutURL    string
	returnURL      string
	cancelURL      string
	notifyURL      string

	now func() time.Time
}

func NewPayHereGateway(merchantID, merchantSecret, checkoutURL, returnURL, cancelURL, notifyURL string) *PayHereGateway {
	return &PayHereGateway{
		merchantID:     merchantID,
		merchantSecret: merchantSecret,
		checkoutURL:    checkoutURL,
		returnURL:      returnURL,
		cancelURL:      cancelURL,
		notifyURL:      notifyURL,
		now:            time.Now,
	}
}

func (g *PayHereGateway) CheckoutURL() string {
	return g.checkoutURL
}

func (g *PayHereGateway) CreateCheckoutRequest(user *domain.User, course *domain.Course) (*domain.PaymentRequest, error) {
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	orderID := NewOrderID(user.ID, course.ID, g.now())
	amount := FormatAmount(course.Price)

	req := &domain.PaymentRequest{
		MerchantID: g.merchantID,
		OrderID:    orderID,
		Items:      course.Title,
		Amount:     amount,
		Currency:   course.Currency,
		Hash:       g.sign(g.merchantID, orderID, amount, course.Currency),
		ReturnURL:  g.returnURL,
		CancelURL:  g.cancelURL,
		NotifyURL:  g.notifyURL,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
	}

	return req, nil
}

func (g *PayHereGateway) VerifyNotification(n domain.PaymentNotification) error {
	want := g.sign(n.MerchantID, n.OrderID, n.Amount, n.Currency, strconv.Itoa(n.StatusCode))

	if subtle.ConstantTimeCompare([]byte(want), []byte(n.Signature)) != 1 {
		return domain.ErrHashMismatch
	}

	if n.MerchantID != g.merchantID {
		return domain.ErrHashMismatch
	}

	return nil
}

// SignNotification computes the signature the gateway attaches to a
// notification, used by tests that simulate the gateway side.
func (g *PayHereGateway) SignNotification(n domain.PaymentNotification) string {
	return g.sign(n.MerchantID, n.OrderID, n.Amount, n.Currency, strconv.Itoa(n.StatusCode))
}

func (g *PayHereGateway) sign(parts ...string) string {
	mac := hmac.New(sha256.New, []byte(g.merchantSecret))
	mac.Write([]byte(strings.Join(parts, "")))

	return strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))
}

// FormatAmount renders a price with fixed two-decimal precision, the only
// representation the gateway signs over.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// NewOrderID derives a fresh order id per checkout attempt. The timestamp
// component keeps retries after a cancelled attempt distinct for the same
// (user, course) pair.
func NewOrderID(userID, courseID int, now time.Time) string {
	return fmt.Sprintf("%d_%d_%d", userID, courseID, now.UnixMilli())
}

// ParseOrderID recovers the (user, course) pair from an order id.
func ParseOrderID(orderID string) (userID, courseID int, err error) {
	fields := strings.Split(orderID, "_")
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("malformed order id %q", orderID)
	}

	userID, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed order id %q: %w", orderID, err)
	}

	courseID, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed order id %q: %w", orderID, err)
	}

	if _, err := strconv.ParseInt(fields[2], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("malformed order id %q: %w", orderID, err)
	}

	return userID, courseID, nil
}
