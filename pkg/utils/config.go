package utils

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("READINGHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("READINGHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "readinghub"
	}

	dur := 24 * time.Hour
	if ttl := os.Getenv("READINGHUB_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			dur = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: dur,
	}
}

// AdminMode reports whether the admin endpoints are enabled. Off by default
// so a stray deployment cannot expose backup/delete.
func AdminMode() bool {
	return strings.EqualFold(os.Getenv("READINGHUB_ADMIN_MODE"), "true")
}

// DataDir is the root for locally stored files: images, backups, imported
// EPUBs. Defaults to ./data next to the binary.
func DataDir() string {
	if d := os.Getenv("READINGHUB_DATA_DIR"); d != "" {
		return d
	}
	return "data"
}

// BackupDir is where admin backups are written.
func BackupDir() string {
	return filepath.Join(DataDir(), "backups")
}

type StorageConfig struct {
	UseOSS          bool
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string // e.g. oss-cn-hongkong.aliyuncs.com
	Bucket          string
}

func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		UseOSS:          os.Getenv("USE_OSS") == "true",
		AccessKeyID:     os.Getenv("OSS_ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("OSS_ACCESS_KEY_SECRET"),
		Endpoint:        os.Getenv("OSS_ENDPOINT"),
		Bucket:          os.Getenv("OSS_BUCKET_NAME"),
	}
}

// Configured reports whether remote storage has everything it needs.
func (c StorageConfig) Configured() bool {
	return c.UseOSS && c.AccessKeyID != "" && c.AccessKeySecret != "" &&
		c.Endpoint != "" && c.Bucket != ""
}

type YoudaoConfig struct {
	AppKey    string
	AppSecret string
}

func LoadYoudaoConfig() YoudaoConfig {
	return YoudaoConfig{
		AppKey:    os.Getenv("YOUDAO_APP_KEY"),
		AppSecret: os.Getenv("YOUDAO_APP_SECRET"),
	}
}

func (c YoudaoConfig) Configured() bool {
	return c.AppKey != "" && c.AppSecret != "" &&
		c.AppKey != "your_app_key_here" && c.AppSecret != "your_app_secret_here"
}

type ReplicaConfig struct {
	URL        string // base URL of the remote document store REST API
	ServiceKey string
}

func LoadReplicaConfig() ReplicaConfig {
	return ReplicaConfig{
		URL:        os.Getenv("REPLICA_URL"),
		ServiceKey: os.Getenv("REPLICA_SERVICE_KEY"),
	}
}

func (c ReplicaConfig) Configured() bool {
	return c.URL != "" && c.ServiceKey != "" && c.ServiceKey != "placeholder"
}
