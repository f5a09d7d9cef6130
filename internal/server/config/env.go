package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables recognized by parseEnv.
const (
	EnvGRPCAddr          = "GLOBA_GRPC_ADDR"
	EnvHTTPAddr          = "GLOBA_HTTP_ADDR"
	EnvDatabaseDSN       = "GLOBA_DATABASE_DSN"
	EnvSecretKey         = "GLOBA_SECRET_KEY"
	EnvLogLevel          = "GLOBA_LOG_LEVEL"
	EnvKafkaBrokers      = "GLOBA_KAFKA_BROKERS"
	EnvKafkaGroupID      = "GLOBA_KAFKA_GROUP_ID"
	EnvKafkaSuccessTopic = "GLOBA_KAFKA_SUCCESS_TOPIC"
	EnvKafkaFailureTopic = "GLOBA_KAFKA_FAILURE_TOPIC"
	EnvKafkaWorkers      = "GLOBA_KAFKA_WORKERS"
	EnvHandlerRetries    = "GLOBA_HANDLER_RETRIES"
	EnvFirebaseCreds     = "GLOBA_FIREBASE_CREDENTIALS"
	EnvFirebaseProject   = "GLOBA_FIREBASE_PROJECT_ID"
	EnvPushDryRun        = "GLOBA_PUSH_DRY_RUN"
	EnvPushTimeout       = "GLOBA_PUSH_TIMEOUT"
	EnvS3RootUser        = "GLOBA_S3_ROOT_USER"
	EnvS3RootPassword    = "GLOBA_S3_ROOT_PASSWORD"
	EnvS3Bucket          = "GLOBA_S3_BUCKET"
	EnvS3Region          = "GLOBA_S3_REGION"
	EnvS3BaseEndpoint    = "GLOBA_S3_BASE_ENDPOINT"
)

// parseEnv overlays non-empty GLOBA_* variables onto config.
func parseEnv(config *Config) error {
	setString(&config.EndpointAddrGRPC, envValue(EnvGRPCAddr))
	setString(&config.EndpointAddrHTTP, envValue(EnvHTTPAddr))
	setString(&config.DatabaseDSN, envValue(EnvDatabaseDSN))
	setString(&config.SecretKey, envValue(EnvSecretKey))
	setString(&config.LogLevel, envValue(EnvLogLevel))

	if v := envValue(EnvKafkaBrokers); v != "" {
		config.KafkaBrokers = splitList(v)
	}
	setString(&config.KafkaGroupID, envValue(EnvKafkaGroupID))
	setString(&config.KafkaSuccessTopic, envValue(EnvKafkaSuccessTopic))
	setString(&config.KafkaFailureTopic, envValue(EnvKafkaFailureTopic))

	if err := envInt(EnvKafkaWorkers, &config.KafkaWorkers); err != nil {
		return err
	}
	if err := envInt(EnvHandlerRetries, &config.HandlerRetries); err != nil {
		return err
	}

	setString(&config.FirebaseCredentialsFile, envValue(EnvFirebaseCreds))
	setString(&config.FirebaseProjectID, envValue(EnvFirebaseProject))
	if v := envValue(EnvPushDryRun); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvPushDryRun, err)
		}
		config.PushDryRun = b
	}
	if v := envValue(EnvPushTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvPushTimeout, err)
		}
		config.PushTimeout = d
	}

	setString(&config.S3RootUser, envValue(EnvS3RootUser))
	setString(&config.S3RootPassword, envValue(EnvS3RootPassword))
	setString(&config.S3Bucket, envValue(EnvS3Bucket))
	setString(&config.S3Region, envValue(EnvS3Region))
	setString(&config.S3BaseEndpoint, envValue(EnvS3BaseEndpoint))
	return nil
}

func envValue(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, dst *int) error {
	v := envValue(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = n
	return nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
