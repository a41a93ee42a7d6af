package types

type Config struct {
	Environment       string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort        uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL       string `envconfig:"DATABASE_URL"`
	DatabaseSchema    string `envconfig:"DATABASE_SCHEMA" default:"lifelink"`
	ReadTimeoutSec    uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec   uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`
	RequestTimeoutSec uint   `envconfig:"REQUEST_TIMEOUT_SEC" default:"5"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Verification document storage
	S3BucketName string `envconfig:"S3_BUCKET_NAME" default:"lifelink-profile-documents"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Matching
	DefaultRadiusKm float64 `envconfig:"DEFAULT_RADIUS_KM" default:"50"`
	MaxRadiusKm     float64 `envconfig:"MAX_RADIUS_KM" default:"20038"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
