package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/y2k2/globa/internal/timex"
)

// FileConfig is the on-disk shape of the configuration, shared by the JSON
// and TOML decoders. Zero values leave the current setting untouched.
type FileConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	EndpointAddrHTTP string `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn" toml:"database_dsn"`
	SecretKey        string `json:"secret_key" toml:"secret_key"`
	LogLevel         string `json:"log_level" toml:"log_level"`

	Kafka struct {
		Brokers      []string       `json:"brokers" toml:"brokers"`
		GroupID      string         `json:"group_id" toml:"group_id"`
		SuccessTopic string         `json:"success_topic" toml:"success_topic"`
		FailureTopic string         `json:"failure_topic" toml:"failure_topic"`
		Workers      int            `json:"workers" toml:"workers"`
		Retries      *int           `json:"retries" toml:"retries"`
		RetryBackoff timex.Duration `json:"retry_backoff" toml:"retry_backoff"`
	} `json:"kafka" toml:"kafka"`

	Push struct {
		CredentialsFile string         `json:"credentials_file" toml:"credentials_file"`
		ProjectID       string         `json:"project_id" toml:"project_id"`
		DryRun          bool           `json:"dry_run" toml:"dry_run"`
		Timeout         timex.Duration `json:"timeout" toml:"timeout"`
	} `json:"push" toml:"push"`

	S3 struct {
		RootUser     string `json:"root_user" toml:"root_user"`
		RootPassword string `json:"root_password" toml:"root_password"`
		Bucket       string `json:"bucket" toml:"bucket"`
		Region       string `json:"region" toml:"region"`
		BaseEndpoint string `json:"base_endpoint" toml:"base_endpoint"`
	} `json:"s3" toml:"s3"`
}

// parseFile overlays settings from path onto config. The decoder is chosen by
// extension: ".toml" uses TOML, anything else JSON. An empty path is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, fc)
	} else {
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(c *Config) {
	setString(&c.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&c.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&c.DatabaseDSN, fc.DatabaseDSN)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.LogLevel, fc.LogLevel)

	if len(fc.Kafka.Brokers) > 0 {
		c.KafkaBrokers = append([]string(nil), fc.Kafka.Brokers...)
	}
	setString(&c.KafkaGroupID, fc.Kafka.GroupID)
	setString(&c.KafkaSuccessTopic, fc.Kafka.SuccessTopic)
	setString(&c.KafkaFailureTopic, fc.Kafka.FailureTopic)
	if fc.Kafka.Workers != 0 {
		c.KafkaWorkers = fc.Kafka.Workers
	}
	if fc.Kafka.Retries != nil {
		c.HandlerRetries = *fc.Kafka.Retries
	}
	if fc.Kafka.RetryBackoff.Duration != 0 {
		c.HandlerRetryBackoff = fc.Kafka.RetryBackoff.Duration
	}

	setString(&c.FirebaseCredentialsFile, fc.Push.CredentialsFile)
	setString(&c.FirebaseProjectID, fc.Push.ProjectID)
	if fc.Push.DryRun {
		c.PushDryRun = true
	}
	if fc.Push.Timeout.Duration != 0 {
		c.PushTimeout = fc.Push.Timeout.Duration
	}

	setString(&c.S3RootUser, fc.S3.RootUser)
	setString(&c.S3RootPassword, fc.S3.RootPassword)
	setString(&c.S3Bucket, fc.S3.Bucket)
	setString(&c.S3Region, fc.S3.Region)
	setString(&c.S3BaseEndpoint, fc.S3.BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
