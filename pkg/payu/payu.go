// Package payu builds signed PayU hosted-checkout requests, verifies the
// reverse hash on gateway callbacks and issues refunds.
package payu

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"playverse/pkg/client"

	"github.com/google/uuid"
)

const (
	ModeTest = "test"
	ModeProd = "prod"

	TestPaymentURL = "https://test.payu.in/_payment"
	ProdPaymentURL = "https://secure.payu.in/_payment"

	DefaultRefundURL = "https://test.payu.in/merchant/postservice.php?form=2"

	maxTxnIDLength = 25
)

type Config struct {
	MerchantKey  string
	MerchantSalt string
	Mode         string
	PaymentURL   string
	RefundURL    string
	// BackendBaseURL is where PayU posts the browser back (surl/furl).
	BackendBaseURL string
}

type Client struct {
	cfg        Config
	httpClient *client.HttpClient
}

func NewClient(cfg Config, httpClient *client.HttpClient) *Client {
	if cfg.PaymentURL == "" {
		cfg.PaymentURL = TestPaymentURL
		if cfg.Mode == ModeProd {
			cfg.PaymentURL = ProdPaymentURL
		}
	}
	if cfg.RefundURL == "" {
		cfg.RefundURL = DefaultRefundURL
	}
	cfg.BackendBaseURL = strings.TrimRight(cfg.BackendBaseURL, "/")
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) PaymentURL() string {
	return c.cfg.PaymentURL
}

func (c *Client) SuccessURL() string {
	return c.cfg.BackendBaseURL + "/api/v1/payments/payu/success"
}

func (c *Client) FailureURL() string {
	return c.cfg.BackendBaseURL + "/api/v1/payments/payu/failure"
}

// NewTransactionID returns a fresh gateway transaction id that fits PayU's 25 character limit.
func NewTransactionID() string {
	id := "PV" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:maxTxnIDLength]
}

// FormatAmount renders an amount the way both hash formulas expect it.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

type PaymentRequest struct {
	TxnID       string
	Amount      float64
	ProductInfo string
	FirstName   string
	Email       string
	Phone       string
	ClientURL   string
	EventID     string
}

// PaymentForm is the set of fields the browser posts to the gateway.
type PaymentForm struct {
	PayURL      string `json:"payuUrl"`
	Key         string `json:"key"`
	TxnID       string `json:"txnid"`
	Amount      string `json:"amount"`
	ProductInfo string `json:"productinfo"`
	FirstName   string `json:"firstname"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	SURL        string `json:"surl"`
	FURL        string `json:"furl"`
	Hash        string `json:"hash"`
	UDF1        string `json:"udf1"`
	UDF2        string `json:"udf2"`
	UDF3        string `json:"udf3"`
}

// BuildPaymentRequest signs a checkout request. It performs no I/O.
func (c *Client) BuildPaymentRequest(req PaymentRequest) PaymentForm {
	email := req.Email
	if email == "" {
		email = req.Phone + "@example.com"
	}
	form := PaymentForm{
		PayURL:      c.cfg.PaymentURL,
		Key:         c.cfg.MerchantKey,
		TxnID:       req.TxnID,
		Amount:      FormatAmount(req.Amount),
		ProductInfo: req.ProductInfo,
		FirstName:   req.FirstName,
		Email:       email,
		Phone:       req.Phone,
		SURL:        c.SuccessURL(),
		FURL:        c.FailureURL(),
		UDF1:        req.ClientURL,
		UDF2:        req.Phone,
		UDF3:        req.EventID,
	}
	form.Hash = PaymentHash(c.cfg.MerchantKey, c.cfg.MerchantSalt, form)
	return form
}

// PaymentHash is sha512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||salt).
func PaymentHash(key, salt string, f PaymentForm) string {
	fields := []string{
		key, f.TxnID, f.Amount, f.ProductInfo, f.FirstName, f.Email,
		f.UDF1, f.UDF2, f.UDF3, "", "",
		"", "", "", "", "",
		salt,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

// Verify checks the reverse hash and merchant key of a gateway callback.
func (c *Client) Verify(r *Response) error {
	if r.Key != "" && r.Key != c.cfg.MerchantKey {
		return ErrKeyMismatch
	}
	if r.Hash == "" {
		return ErrMissingHash
	}
	expected := ReverseHash(c.cfg.MerchantKey, c.cfg.MerchantSalt, r)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(r.Hash))) != 1 {
		return ErrSignatureMismatch
	}
	return nil
}

// ReverseHash is sha512([additionalCharges|]salt|status||||||udf5|udf4|udf3|udf2|udf1|email|firstname|productinfo|amount|txnid|key).
func ReverseHash(key, salt string, r *Response) string {
	fields := make([]string, 0, 18)
	if r.AdditionalCharges != "" {
		fields = append(fields, r.AdditionalCharges)
	}
	fields = append(fields,
		salt, r.Status,
		"", "", "", "", "",
		r.UDF5, r.UDF4, r.UDF3, r.UDF2, r.UDF1,
		r.Email, r.FirstName, r.ProductInfo, r.Amount, r.TxnID, key,
	)
	return sha512Hex(strings.Join(fields, "|"))
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
