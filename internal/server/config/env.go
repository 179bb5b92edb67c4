package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "FIREWATCH_"

type lookupFunc func(key string) (string, bool)

// parseEnv overlays FIREWATCH_* variables. Durations use Go syntax ("1h");
// values that do not parse panic, same as a malformed config file.
func parseEnv(config *Config, lookup lookupFunc) {
	envString(lookup, "ADDRESS", &config.EndpointAddrHTTP)
	envString(lookup, "DATABASE_DSN", &config.DatabaseDSN)
	envString(lookup, "SECRET_KEY", &config.SecretKey)
	envDuration(lookup, "ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	envInt(lookup, "BCRYPT_COST", &config.BcryptCost)
	envString(lookup, "SESSION_STORE", &config.SessionStore)
	envString(lookup, "REDIS_ADDR", &config.RedisAddr)
	envString(lookup, "REDIS_PASSWORD", &config.RedisPassword)
	envInt(lookup, "REDIS_DB", &config.RedisDB)
	envDuration(lookup, "SESSION_PURGE_INTERVAL", &config.SessionPurgeInterval)
	if v, ok := lookup(EnvPrefix + "MAX_UPLOAD_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%sMAX_UPLOAD_SIZE: %w", EnvPrefix, err))
		}
		config.MaxUploadSize = n
	}
	envString(lookup, "S3_ROOT_USER", &config.S3RootUser)
	envString(lookup, "S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString(lookup, "S3_BUCKET", &config.S3Bucket)
	envString(lookup, "S3_REGION", &config.S3Region)
	envString(lookup, "S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

func envString(lookup lookupFunc, name string, dst *string) {
	if v, ok := lookup(EnvPrefix + name); ok {
		*dst = v
	}
}

func envInt(lookup lookupFunc, name string, dst *int) {
	v, ok := lookup(EnvPrefix + name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
	}
	*dst = n
}

func envDuration(lookup lookupFunc, name string, dst *time.Duration) {
	v, ok := lookup(EnvPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
	}
	*dst = d
}
