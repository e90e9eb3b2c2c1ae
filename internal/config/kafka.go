package config

import (
	"os"
	"strconv"
)

// KafkaConfig holds Kafka connection settings for the detection sink.
type KafkaConfig struct {
	BootstrapServers string
	SecurityProtocol string
	SASLMechanism    string
	SASLUsername     string
	SASLPassword     string
	Topic            string
	CompressionType  string
	Acks             string
	LingerMS         int
	MaxRetries       int
}

// NewKafkaConfig builds a KafkaConfig from BOAT_DETECT_KAFKA_* environment variables.
func NewKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		BootstrapServers: getEnv("BOAT_DETECT_KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"),
		SecurityProtocol: getEnv("BOAT_DETECT_KAFKA_SECURITY_PROTOCOL", "PLAINTEXT"),
		SASLMechanism:    getEnv("BOAT_DETECT_KAFKA_SASL_MECHANISM", ""),
		SASLUsername:     getEnv("BOAT_DETECT_KAFKA_SASL_USERNAME", ""),
		SASLPassword:     getEnv("BOAT_DETECT_KAFKA_SASL_PASSWORD", ""),
		Topic:            getEnv("BOAT_DETECT_KAFKA_TOPIC", "boat-detections"),
		CompressionType:  getEnv("BOAT_DETECT_KAFKA_COMPRESSION_TYPE", "snappy"),
		Acks:             getEnv("BOAT_DETECT_KAFKA_ACKS", "all"),
		LingerMS:         getEnvInt("BOAT_DETECT_KAFKA_LINGER_MS", 10),
		MaxRetries:       getEnvInt("BOAT_DETECT_KAFKA_MAX_RETRIES", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
