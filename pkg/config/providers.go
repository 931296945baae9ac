package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// PayUConfig holds the merchant credentials for the payment gateway.
type PayUConfig struct {
	MerchantKey  string `envconfig:"PAYU_MERCHANT_KEY" required:"true"`
	MerchantSalt string `envconfig:"PAYU_MERCHANT_SALT" required:"true"`
	Mode         string `envconfig:"PAYU_MODE" default:"test"`
	PaymentURL   string `envconfig:"PAYU_PAYMENT_URL"`
	RefundURL    string `envconfig:"PAYU_REFUND_URL" default:"https://test.payu.in/merchant/postservice.php?form=2"`
}

type MSG91Config struct {
	AuthKey          string `envconfig:"MSG91_AUTH_KEY" required:"true"`
	IntegratedNumber string `envconfig:"MSG91_INTEGRATED_NUMBER" required:"true"`
	BaseURL          string `envconfig:"MSG91_BASE_URL" default:"https://api.msg91.com/api/v5/whatsapp/whatsapp-outbound-message/bulk/"`

	BroadcastNamespace   string `envconfig:"MSG91_BROADCAST_NAMESPACE" default:"6e8aa1f2_7d4c_4f4b_865c_882d0f4043be"`
	ConfirmationTemplate string `envconfig:"MSG91_CONFIRMATION_TEMPLATE" default:"playverse_game_confirmation_24_feb_template"`
	CancellationTemplate string `envconfig:"MSG91_CANCELLATION_TEMPLATE" default:"playverse_cancellation_msg_24_feb"`
	ConfirmationLinkBase string `envconfig:"MSG91_CONFIRMATION_LINK_BASE" default:"https://sportomic.com/confirm?event="`
	DefaultHeaderImage   string `envconfig:"MSG91_DEFAULT_HEADER_IMAGE" default:"https://files.msg91.com/432091/vcaifgxt"`

	ThresholdNamespace string `envconfig:"MSG91_THRESHOLD_NAMESPACE" default:"92a9caec_d4c4_42cb_9e01_58b5495e0ac3"`
	ThresholdTemplate  string `envconfig:"MSG91_THRESHOLD_TEMPLATE" default:"new_lead_25june"`
	AdminPhone         string `envconfig:"MSG91_ADMIN_PHONE"`
}

type AdminConfig struct {
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	Role      string `envconfig:"ADMIN_ROLE" default:"admin"`
}

// Providers groups the credentials of every external collaborator.
type Providers struct {
	PayU  PayUConfig
	MSG91 MSG91Config
	Admin AdminConfig
}

func LoadProviders() (Providers, error) {
	var p Providers
	if err := envconfig.Process("", &p.PayU); err != nil {
		return p, fmt.Errorf("payu config: %w", err)
	}
	if err := envconfig.Process("", &p.MSG91); err != nil {
		return p, fmt.Errorf("msg91 config: %w", err)
	}
	if err := envconfig.Process("", &p.Admin); err != nil {
		return p, fmt.Errorf("admin config: %w", err)
	}
	return p, nil
}
