package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database     *Database
	HTTP         *HTTP
	Auth         *Auth
	Gateway      *Gateway
	Disbursement *Disbursement
	Redis        *Redis
	RabbitMQ     *RabbitMQ
	App          *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Auth struct {
	// hex encoded v4 local key; a random key is generated when empty
	SymmetricKey  string        `env:"AUTH_SYMMETRIC_KEY"`
	TokenDuration time.Duration `env:"AUTH_TOKEN_DURATION" envDefault:"24h"`
}

type Gateway struct {
	MerchantID         string        `env:"PAYHERE_MERCHANT_ID"`
	MerchantSecret     string        `env:"PAYHERE_MERCHANT_SECRET"`
	Currency           string        `env:"PAYHERE_CURRENCY" envDefault:"LKR"`
	CheckoutURL        string        `env:"PAYHERE_CHECKOUT_URL" envDefault:"https://sandbox.payhere.lk/pay/checkout"`
	ReturnURL          string        `env:"PAYHERE_RETURN_URL"`
	CancelURL          string        `env:"PAYHERE_CANCEL_URL"`
	NotifyURL          string        `env:"PAYHERE_NOTIFY_URL"`
	NotifyTimeout      time.Duration `env:"PAYHERE_NOTIFY_TIMEOUT" envDefault:"10s"`
	PlatformFeePercent string        `env:"PLATFORM_FEE_PERCENT" envDefault:"10"`
	PayoutPolicy       string        `env:"PAYOUT_POLICY" envDefault:"NET"`
}

type Disbursement struct {
	HostString string        `env:"DISBURSEMENT_ADDRESS"`
	APIKey     string        `env:"DISBURSEMENT_API_KEY"`
	MaxElapsed time.Duration `env:"DISBURSEMENT_MAX_ELAPSED" envDefault:"30s"`
	RetryDelay time.Duration `env:"DISBURSEMENT_RETRY_DELAY" envDefault:"1m"`
	Workers    int           `env:"DISBURSEMENT_WORKERS" envDefault:"3"`
}

type Redis struct {
	Addr      string        `env:"REDIS_ADDR"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" envDefault:"0"`
	NotifyTTL time.Duration `env:"REDIS_NOTIFY_TTL" envDefault:"72h"`
}

type RabbitMQ struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"tutorpay.events"`
}

func NewConfig() (*Config, error) {
	return Parse(os.Args[0], os.Args[1:])
}

// Parse reads flags from args, then lets environment variables override them.
func Parse(name string, args []string) (*Config, error) {
	var db Database
	var http HTTP
	var auth Auth
	var gateway Gateway
	var disbursement Disbursement
	var redis Redis
	var rabbit RabbitMQ
	var app App

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&db.DSN, "d", "", "Database string")
	fs.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	fs.StringVar(&disbursement.HostString, "p", "", "Disbursement channel address")
	fs.StringVar(&gateway.MerchantID, "merchant", "", "PayHere merchant id")
	fs.StringVar(&redis.Addr, "redis", "", "Redis address")
	fs.StringVar(&rabbit.URL, "amqp", "", "RabbitMQ url")
	fs.StringVar(&app.LogLevel, "l", `error`, "Log level")
	fs.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	sections := []struct {
		name string
		v    any
	}{
		{"database", &db},
		{"http", &http},
		{"auth", &auth},
		{"gateway", &gateway},
		{"disbursement", &disbursement},
		{"redis", &redis},
		{"rabbitmq", &rabbit},
		{"app", &app},
	}
	for _, s := range sections {
		if err := env.Parse(s.v); err != nil {
			return nil, fmt.Errorf("error parsing %s config: %w", s.name, err)
		}
	}

	if app.Mode != AppModeDevelop && app.Mode != AppModeProduction {
		return nil, fmt.Errorf("unknown app mode %q", app.Mode)
	}
	if disbursement.Workers < 1 {
		disbursement.Workers = 1
	}

	config := Config{
		Database:     &db,
		HTTP:         &http,
		Auth:         &auth,
		Gateway:      &gateway,
		Disbursement: &disbursement,
		Redis:        &redis,
		RabbitMQ:     &rabbit,
		App:          &app,
	}

	return &config, nil
}
