package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	GatewaySandbox = "sandbox"
	GatewayOmise   = "omise"
)

// AppConfig: настройки движка бронирования и его транспорта.
type AppConfig struct {
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":50051"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// TTL холда: единственный таймаут всего checkout.
	HoldTTL time.Duration `env:"HOLD_TTL" envDefault:"10m"`

	ServiceFeeRate float64 `env:"SERVICE_FEE_RATE" envDefault:"0.02"`
	TaxRate        float64 `env:"TAX_RATE" envDefault:"0.05"`
	PriceTolerance float64 `env:"PRICE_TOLERANCE" envDefault:"0.01"`
	Currency       string  `env:"CURRENCY" envDefault:"INR"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	HoldRetention time.Duration `env:"HOLD_RETENTION" envDefault:"24h"`

	Gateway                string `env:"GATEWAY" envDefault:"sandbox"`
	SandboxCheckoutBaseURL string `env:"SANDBOX_CHECKOUT_BASE_URL" envDefault:"http://localhost:8080/sandbox/checkout"`
	OmisePublicKey         string `env:"OMISE_PUBLIC_KEY"`
	OmiseSecretKey         string `env:"OMISE_SECRET_KEY"`
	OmiseSourceType        string `env:"OMISE_SOURCE_TYPE" envDefault:"promptpay"`
	PaymentReturnURL       string `env:"PAYMENT_RETURN_URL" envDefault:"http://localhost:3000/checkout/return"`
	CallbackToken          string `env:"CALLBACK_TOKEN"`

	// Пустой RABBIT_URL отключает брокер: события пишутся только в аудит.
	RabbitURL       string `env:"RABBIT_URL"`
	BookingExchange string `env:"BOOKING_EXCHANGE" envDefault:"booking.events"`
	PaymentExchange string `env:"PAYMENT_EXCHANGE" envDefault:"payment.events"`
	PaymentQueue    string `env:"PAYMENT_QUEUE" envDefault:"booking-engine.payment"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse app env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.HoldTTL <= 0 {
		return fmt.Errorf("invalid app config: HOLD_TTL must be positive")
	}
	if c.ServiceFeeRate < 0 || c.ServiceFeeRate > 1 {
		return fmt.Errorf("invalid app config: SERVICE_FEE_RATE must be within [0, 1]")
	}
	if c.TaxRate < 0 || c.TaxRate > 1 {
		return fmt.Errorf("invalid app config: TAX_RATE must be within [0, 1]")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("invalid app config: SWEEP_INTERVAL must be positive")
	}
	if c.HoldRetention < 0 {
		return fmt.Errorf("invalid app config: HOLD_RETENTION must not be negative")
	}
	if c.PriceTolerance < 0 {
		return fmt.Errorf("invalid app config: PRICE_TOLERANCE must not be negative")
	}
	switch c.Gateway {
	case GatewaySandbox:
	case GatewayOmise:
		if c.OmisePublicKey == "" || c.OmiseSecretKey == "" {
			return fmt.Errorf("invalid app config: OMISE_PUBLIC_KEY and OMISE_SECRET_KEY are required for the omise gateway")
		}
	default:
		return fmt.Errorf("invalid app config: unknown gateway %q", c.Gateway)
	}
	return nil
}
