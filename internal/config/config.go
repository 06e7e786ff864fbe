package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server   ServerConfig
	Scylla   ScyllaConfig
	Redis    RedisConfig
	Elastic  ElasticConfig
	MinIO    MinIOConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
	Payment  PaymentConfig
	Shipping ShippingConfig
	Mail     MailConfig
	Shop     ShopConfig
}

type ServerConfig struct {
	Port            string
	BaseURL         string
	FrontendURL     string
	AllowedOrigins  []string
	Production      bool
	LogLevel        string
	// Requêtes par minute et par IP sur /api; 0 désactive la limite.
	APIRateLimit    int64
	// Délai appliqué aux appels sortants (paiement, transport, email).
	UpstreamTimeout time.Duration
}

type ScyllaConfig struct {
	Hosts            []string
	Username         string
	Password         string
	SSLEnabled       bool
	CACertPath       string
	ProductsKeyspace string
	UsersKeyspace    string
	OrdersKeyspace   string
	Timeout          time.Duration
	NumConns         int
}

// Enabled indique si ScyllaDB est configuré; sinon le stockage mémoire est utilisé.
func (c ScyllaConfig) Enabled() bool {
	return len(c.Hosts) > 0 && c.ProductsKeyspace != ""
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ElasticConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type AuthConfig struct {
	JWTSecret      string
	AdminJWTSecret string
	SessionSecret  string
	TokenTTL       time.Duration
	RememberTTL    time.Duration
	SecureCookies  bool
	AdminEmail     string
	AdminPassword  string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type PaymentConfig struct {
	Provider            string
	Currency            string
	RazorpayKeyID       string
	RazorpayKeySecret   string
	RazorpayBaseURL     string
	StripeSecretKey     string
	StripeWebhookSecret string
}

type ShippingConfig struct {
	Email          string
	Password       string
	BaseURL        string
	PickupLocation string
	TokenTTL       time.Duration
	TrackingEvery  time.Duration
}

// Enabled indique si les identifiants Shiprocket sont présents.
func (c ShippingConfig) Enabled() bool {
	return c.Email != "" && c.Password != ""
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type ShopConfig struct {
	Name                  string
	SupportEmail          string
	UPIID                 string
	OrderIDPrefix         string
	CODFee                float64
	DeliveryCharge        float64
	FreeDeliveryThreshold float64
	TaxRate               float64
	UnpaidOrderTTL        time.Duration
}

// Load lit le fichier .env s'il existe puis construit la configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Warn().Msg("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Info().Msg("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration depuis l'environnement courant.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			BaseURL:         getEnv("BASE_URL", "http://localhost:8080"),
			FrontendURL:     os.Getenv("FRONTEND_URL"),
			AllowedOrigins:  getList("ALLOWED_ORIGINS", "http://localhost:3000"),
			Production:      getEnv("APP_ENV", "development") == "production",
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			APIRateLimit:    int64(getInt("API_RATE_LIMIT", 120)),
			UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		},
		Scylla: ScyllaConfig{
			Hosts:            getList("SCYLLA_HOSTS", ""),
			Username:         os.Getenv("SCYLLA_USERNAME"),
			Password:         os.Getenv("SCYLLA_PASSWORD"),
			SSLEnabled:       getBool("SCYLLA_SSL_ENABLED", false),
			CACertPath:       os.Getenv("SCYLLA_SSL_CA_PATH"),
			ProductsKeyspace: os.Getenv("SCYLLA_KS_PRODUCTS"),
			UsersKeyspace:    os.Getenv("SCYLLA_KS_USERS"),
			OrdersKeyspace:   os.Getenv("SCYLLA_KS_ORDERS"),
			Timeout:          getDuration("SCYLLA_TIMEOUT", 5*time.Second),
			NumConns:         getInt("SCYLLA_NUM_CONNS", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Elastic: ElasticConfig{
			Addresses: getList("ELASTIC_ADDRESSES", ""),
			Username:  os.Getenv("ELASTIC_USERNAME"),
			Password:  os.Getenv("ELASTIC_PASSWORD"),
			Index:     getEnv("ELASTIC_INDEX", "products"),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "wearxture-media"),
			UseSSL:    getBool("MINIO_USE_SSL", false),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: getList("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_ORDER_TOPIC", "orders"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
			SessionSecret:  os.Getenv("SESSION_SECRET"),
			TokenTTL:       getDuration("ACCESS_TOKEN_TTL", 8*time.Hour),
			RememberTTL:    getDuration("REMEMBER_TOKEN_TTL", 30*24*time.Hour),
			SecureCookies:  getBool("SECURE_COOKIES", false),
			AdminEmail:     os.Getenv("ADMIN_EMAIL"),
			AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		},
		Payment: PaymentConfig{
			Provider:            getEnv("PAYMENT_PROVIDER", "razorpay"),
			Currency:            getEnv("PAYMENT_CURRENCY", "INR"),
			RazorpayKeyID:       os.Getenv("RAZORPAY_KEY_ID"),
			RazorpayKeySecret:   os.Getenv("RAZORPAY_KEY_SECRET"),
			RazorpayBaseURL:     getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
			StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		},
		Shipping: ShippingConfig{
			Email:          os.Getenv("SHIPROCKET_EMAIL"),
			Password:       os.Getenv("SHIPROCKET_PASSWORD"),
			BaseURL:        getEnv("SHIPROCKET_BASE_URL", "https://apiv2.shiprocket.in/v1/external"),
			PickupLocation: os.Getenv("SHIPROCKET_PICKUP_LOCATION"),
			TokenTTL:       getDuration("SHIPROCKET_TOKEN_TTL", 9*24*time.Hour),
			TrackingEvery:  getDuration("TRACKING_SYNC_INTERVAL", 30*time.Minute),
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("MAIL_FROM", "noreply@wearxture.com"),
		},
		Shop: ShopConfig{
			Name:                  getEnv("SHOP_NAME", "WEARXTURE"),
			SupportEmail:          getEnv("SHOP_SUPPORT_EMAIL", "support@wearxture.com"),
			UPIID:                 os.Getenv("SHOP_UPI_ID"),
			OrderIDPrefix:         getEnv("ORDER_ID_PREFIX", "WX"),
			CODFee:                getFloat("COD_FEE", 80),
			DeliveryCharge:        getFloat("DELIVERY_CHARGE", 0),
			FreeDeliveryThreshold: getFloat("FREE_DELIVERY_THRESHOLD", 0),
			TaxRate:               getFloat("TAX_RATE", 0),
			UnpaidOrderTTL:        getDuration("UNPAID_ORDER_TTL", 2*time.Hour),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Auth.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Auth.AdminJWTSecret == "" {
		missing = append(missing, "ADMIN_JWT_SECRET")
	}
	if c.Auth.JWTSecret != "" && c.Auth.JWTSecret == c.Auth.AdminJWTSecret {
		return fmt.Errorf("ADMIN_JWT_SECRET doit être différent de JWT_SECRET")
	}
	switch c.Payment.Provider {
	case "razorpay":
		if c.Payment.RazorpayKeySecret == "" {
			missing = append(missing, "RAZORPAY_KEY_SECRET")
		}
	case "stripe":
		if c.Payment.StripeSecretKey == "" {
			missing = append(missing, "STRIPE_SECRET_KEY")
		}
	default:
		return fmt.Errorf("PAYMENT_PROVIDER inconnu: %q", c.Payment.Provider)
	}
	if c.Shop.CODFee < 0 {
		return fmt.Errorf("COD_FEE ne peut pas être négatif")
	}
	if len(missing) > 0 {
		return fmt.Errorf("variables manquantes: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
