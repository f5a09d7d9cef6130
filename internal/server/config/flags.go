package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/y2k2/globa/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-l string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-v string   log level (debug, info, warn, error)
//	-k string   comma separated Kafka brokers
//	-g string   Kafka consumer group id
//	-w int      Kafka reader workers
//	-f string   Firebase service account credentials file
//	-b string   S3 bucket name
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Only these flags are taken from args, so other components can share the
// command line.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-l", "-d", "-s", "-v", "-k", "-g", "-w", "-f", "-b", "-e"})

	fs := flag.NewFlagSet("globa", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "l", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	brokers := fs.String("k", "", "comma separated kafka brokers")
	fs.StringVar(&config.KafkaGroupID, "g", config.KafkaGroupID, "kafka consumer group")
	fs.IntVar(&config.KafkaWorkers, "w", config.KafkaWorkers, "kafka reader workers")
	fs.StringVar(&config.FirebaseCredentialsFile, "f", config.FirebaseCredentialsFile, "firebase credentials file")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *brokers != "" {
		config.KafkaBrokers = splitList(*brokers)
	}
	return nil
}
