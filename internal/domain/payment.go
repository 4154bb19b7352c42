package domain

// PaymentRequest is the ephemeral, signed payload handed to the payment
// gateway as a redirect form POST. It is never persisted; only the digest
// travels with the request, never the shared secret.
type PaymentRequest struct {
	MerchantID string
	OrderID    string
	Items      string
	Amount     string
	Currency   string
	Hash       string
	ReturnURL  string
	CancelURL  string
	NotifyURL  string
	FirstName  string
	LastName   string
	Email      string
}

// Gateway status codes reported on the notify callback.
const (
	GatewayStatusSuccess    = 2
	GatewayStatusPending    = 0
	GatewayStatusCancelled  = -1
	GatewayStatusFailed     = -2
	GatewayStatusChargeback = -3
)

// PaymentNotification is the server-to-server callback body sent by the
// gateway after checkout resolves.
type PaymentNotification struct {
	MerchantID string
	OrderID    string
	Amount     string
	Currency   string
	StatusCode int
	Signature  string
}

type PaymentGateway interface {
	// CreateCheckoutRequest builds a signed request with a fresh order id
	// for one checkout attempt. It has no side effects.
	CreateCheckoutRequest(user *User, course *Course) (*PaymentRequest, error)

	// VerifyNotification recomputes the notification signature and returns
	// ErrHashMismatch when it does not match.
	VerifyNotification(n PaymentNotification) error
}
