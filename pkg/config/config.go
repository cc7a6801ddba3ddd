package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	Port             string
	Environment      string // "development", "staging", "production"
	JWTSecret        string
	JWTTokenLifespan time.Duration

	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	EnableDBSSL bool

	// Storage provider selection: "local", "drive", "cloudinary", "gcs" or "s3".
	StorageProvider string

	// Local provider.
	LocalUploadDir string
	PublicBaseURL  string

	// Google Drive provider. When DriveServiceAccountFile is set it takes
	// precedence over the OAuth2 refresh-token credentials.
	DriveClientID           string
	DriveClientSecret       string
	DriveRedirectURI        string
	DriveRefreshToken       string
	DriveServiceAccountFile string
	DriveRootFolderID       string

	// Cloudinary provider.
	CloudinaryURL    string
	CloudinaryFolder string

	// GCS provider.
	GCSProjectID  string
	GCSBucketName string

	// S3 provider (shares AWSRegion with SES).
	AWSS3Bucket string

	AWSRegion         string
	AWSSESEmailSender string

	FrontendBaseURL string
}

var Cfg AppConfig

// LoadConfig loads the application configuration from environment variables.
func LoadConfig() {
	// Load .env for local development; a missing file is fine in production.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	Cfg.Port = getEnv("PORT", "8080")
	Cfg.Environment = getEnv("ENVIRONMENT", "development")

	Cfg.JWTSecret = getEnv("JWT_SECRET_KEY", "")
	jwtLifespanHours, err := strconv.Atoi(getEnv("JWT_TOKEN_LIFESPAN_HOURS", "1"))
	if err != nil {
		log.Printf("Invalid JWT_TOKEN_LIFESPAN_HOURS, using default 1h. Error: %v", err)
		jwtLifespanHours = 1
	}
	Cfg.JWTTokenLifespan = time.Duration(jwtLifespanHours) * time.Hour

	Cfg.DBHost = getEnv("DB_HOST", "localhost")
	Cfg.DBPort = getEnv("DB_PORT", "5432")
	Cfg.DBUser = getEnv("DB_USER", "estatelist_user")
	Cfg.DBPassword = getEnv("DB_PASSWORD", "estatelist_pass")
	Cfg.DBName = getEnv("DB_NAME", "estatelist_db")
	Cfg.EnableDBSSL = getEnvAsBool("DB_SSL_ENABLE", false)

	Cfg.StorageProvider = getEnv("STORAGE_PROVIDER", "local")
	Cfg.LocalUploadDir = getEnv("LOCAL_UPLOAD_DIR", "uploads")
	Cfg.PublicBaseURL = getEnv("PUBLIC_BASE_URL", "http://localhost:"+Cfg.Port)

	Cfg.DriveClientID = getEnv("GOOGLE_CLIENT_ID", "")
	Cfg.DriveClientSecret = getEnv("GOOGLE_CLIENT_SECRET", "")
	Cfg.DriveRedirectURI = getEnv("GOOGLE_REDIRECT_URI", "")
	Cfg.DriveRefreshToken = getEnv("GOOGLE_REFRESH_TOKEN", "")
	Cfg.DriveServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	Cfg.DriveRootFolderID = getEnv("GOOGLE_DRIVE_ROOT_FOLDER_ID", "")

	Cfg.CloudinaryURL = getEnv("CLOUDINARY_URL", "")
	Cfg.CloudinaryFolder = getEnv("CLOUDINARY_FOLDER", "properties")

	Cfg.GCSProjectID = getEnv("GCS_PROJECT_ID", "")
	Cfg.GCSBucketName = getEnv("GCS_BUCKET_NAME", "")

	Cfg.AWSS3Bucket = getEnv("AWS_S3_BUCKET", "")
	Cfg.AWSRegion = getEnv("AWS_REGION", "")
	Cfg.AWSSESEmailSender = getEnv("AWS_SES_EMAIL_SENDER", "")

	Cfg.FrontendBaseURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	log.Printf("Configuration loaded for environment: %s", Cfg.Environment)
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsBool returns the boolean value of an environment variable or a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Invalid boolean value %q for %s, using default: %t", valStr, key, defaultValue)
		return defaultValue
	}
	return valBool
}

func init() {
	LoadConfig()
}
