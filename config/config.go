package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Username modes for account creation.
const (
	UsernameDerive = "derive"
	UsernameAccept = "accept"
)

// Create-user response modes.
const (
	CreateRespondRedirect = "redirect"
	CreateRespondJSON     = "json"
)

// Page storage backends.
const (
	PagesLocal = "local"
	PagesMinio = "minio"
	PagesGCS   = "gcs"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Auth       AuthConfig
	API        APIConfig
	Pages      PagesConfig
	Seed       SeedConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type AuthConfig struct {
	// StrictRoleCheck compares the resolved user's role on admin paths.
	// When false every authenticated user passes, like the legacy app did.
	StrictRoleCheck bool
	// PasswordHasher is "sha256" (legacy digests) or "bcrypt".
	PasswordHasher  string
	TokenSecret     string
}

type APIConfig struct {
	UsernameMode     string
	IncludeRelations bool
	CreateResponse   string
}

type PagesConfig struct {
	Backend   string
	Dir       string
	// KeyPrefix namespaces page objects inside a shared bucket.
	KeyPrefix string
	Minio     MinioConfig
	GCS       GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	ClassGrade    string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "roster"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "roster_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 3000),
		Database:   dbConfig,
		Auth: AuthConfig{
			StrictRoleCheck: getEnvBool("STRICT_ROLE_CHECK", true),
			PasswordHasher:  getEnv("PASSWORD_HASHER", "sha256"),
			TokenSecret:     getEnv("TOKEN_SECRET", ""),
		},
		API: APIConfig{
			UsernameMode:     getEnv("USERNAME_MODE", UsernameDerive),
			IncludeRelations: getEnvBool("INCLUDE_RELATIONS", true),
			CreateResponse:   getEnv("CREATE_RESPONSE", CreateRespondRedirect),
		},
		Pages: PagesConfig{
			Backend:   getEnv("PAGES_BACKEND", PagesLocal),
			Dir:       getEnv("PAGES_DIR", "public"),
			KeyPrefix: getEnv("PAGES_KEY_PREFIX", "pages"),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "roster-pages"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
			GCS: GCSConfig{
				Bucket:          getEnv("GCS_BUCKET", ""),
				ProjectID:       getEnv("GCS_PROJECT_ID", ""),
				CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			},
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@school.local"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", "Passord01"),
			ClassGrade:    getEnv("SEED_CLASS_GRADE", "1A"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
