package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	//注文価格の出どころ
	PricingClient = "client"
	PricingCart   = "cart"

	EnvProduction = "production"
)

// Configはアプリ全体の設定
type Config struct {
	Port   string // サーバーポート（8080）
	AppEnv string // development/production
	FEURL  string // フロントURL（CORS）

	StoreDriver string // mongo/postgres

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	MongoURI          string
	MongoDB           string
	MongoTransactions bool // replica set のときだけ true

	JWTSecret          string // access / reset 署名
	RefreshTokenSecret string // refresh 署名

	KafkaBrokers []string // 空なら送らない
	KafkaTopic   string

	RazorpayKeyID     string
	RazorpayKeySecret string

	SMTPHost     string // 空ならログ出力だけ
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	ResetURLBase string // パスワード再設定リンク

	OrderPricing string // client/cart
}

// Loadは環境変数から読む
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:   getenv("PORT", "8080"),
		AppEnv: getenv("APP_ENV", "development"),
		FEURL:  getenv("FE_URL", "http://localhost:3000"),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreMongo)),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "fusion"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		MongoURI:          getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:           getenv("MONGO_DB", "fusion"),
		MongoTransactions: envBool("MONGO_TRANSACTIONS", false),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "order-events"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@fusion.local"),
		ResetURLBase: getenv("RESET_URL_BASE", "http://localhost:3000/reset-password"),

		OrderPricing: strings.ToLower(getenv("ORDER_PRICING", PricingClient)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validateは必須と列挙値をチェック
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if c.JWTSecret == c.RefreshTokenSecret {
		return fmt.Errorf("REFRESH_TOKEN_SECRET must differ from JWT_SECRET")
	}

	switch c.StoreDriver {
	case StoreMongo, StorePostgres:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", StoreMongo, StorePostgres)
	}

	switch c.OrderPricing {
	case PricingClient, PricingCart:
	default:
		return fmt.Errorf("ORDER_PRICING must be %q or %q", PricingClient, PricingCart)
	}

	// 本番でリセットリンクをログに出さない
	if c.IsProduction() && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when APP_ENV=%s", EnvProduction)
	}

	if (c.RazorpayKeyID == "") != (c.RazorpayKeySecret == "") {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// PostgresDSN は DATABASE_URL を優先
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Addrは ":8080" 形式
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True":
		return true
	case "0", "false", "FALSE", "False":
		return false
	default:
		return def
	}
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
