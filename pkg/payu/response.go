package payu

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

var (
	ErrMissingHash       = errors.New("payu: response hash missing")
	ErrSignatureMismatch = errors.New("payu: response hash mismatch")
	ErrKeyMismatch       = errors.New("payu: merchant key mismatch")
	ErrMissingTxnID      = errors.New("payu: txnid missing")
)

const (
	StatusSuccess = "success"
	StatusPending = "pending"
	StatusFailure = "failure"
)

// Response is a PayU callback as posted to the webhook or the browser redirect.
type Response struct {
	MihPayID          string `json:"mihpayid"`
	Status            string `json:"status"`
	TxnID             string `json:"txnid"`
	Amount            string `json:"amount"`
	ProductInfo       string `json:"productinfo"`
	FirstName         string `json:"firstname"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Key               string `json:"key"`
	Hash              string `json:"hash"`
	AdditionalCharges string `json:"additionalCharges"`
	UDF1              string `json:"udf1"`
	UDF2              string `json:"udf2"`
	UDF3              string `json:"udf3"`
	UDF4              string `json:"udf4"`
	UDF5              string `json:"udf5"`
	ErrorMessage      string `json:"error_Message"`
}

// ParseForm reads a form-encoded callback.
func ParseForm(v url.Values) (*Response, error) {
	r := &Response{
		MihPayID:          v.Get("mihpayid"),
		Status:            v.Get("status"),
		TxnID:             v.Get("txnid"),
		Amount:            v.Get("amount"),
		ProductInfo:       v.Get("productinfo"),
		FirstName:         v.Get("firstname"),
		Email:             v.Get("email"),
		Phone:             v.Get("phone"),
		Key:               v.Get("key"),
		Hash:              v.Get("hash"),
		AdditionalCharges: v.Get("additionalCharges"),
		UDF1:              v.Get("udf1"),
		UDF2:              v.Get("udf2"),
		UDF3:              v.Get("udf3"),
		UDF4:              v.Get("udf4"),
		UDF5:              v.Get("udf5"),
		ErrorMessage:      v.Get("error_Message"),
	}
	return r, r.validate()
}

// ParseJSON reads a JSON callback body.
func ParseJSON(body []byte) (*Response, error) {
	var r Response
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, err
	}
	return &r, r.validate()
}

func (r *Response) validate() error {
	if strings.TrimSpace(r.TxnID) == "" {
		return ErrMissingTxnID
	}
	return nil
}

func (r *Response) IsSuccess() bool {
	return strings.EqualFold(r.Status, StatusSuccess)
}

func (r *Response) IsPending() bool {
	return strings.EqualFold(r.Status, StatusPending)
}

// ParsedAmount returns the confirmed amount when the gateway supplied a parseable one.
func (r *Response) ParsedAmount() (float64, bool) {
	if r.Amount == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(r.Amount, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
