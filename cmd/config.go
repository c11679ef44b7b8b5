package main

import "time"

type Config struct {
	Host           string `env:"HOST"`
	Port           int    `env:"PORT,default=8000" validate:"min=1,max=65535"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	SummarizerURL     string        `env:"SUMMARIZER_URL,default=http://127.0.0.1:8001" validate:"required,url"`
	SummarizerTimeout time.Duration `env:"SUMMARIZER_TIMEOUT,default=30s" validate:"gt=0"`
	RollingLogSize    int           `env:"ROLLING_LOG_SIZE,default=20" validate:"min=1"`
	SummaryWorkers    int           `env:"SUMMARY_WORKERS,default=2" validate:"min=1"`
	SummaryQueueSize  int           `env:"SUMMARY_QUEUE_SIZE,default=32" validate:"min=1"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64" validate:"min=1"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=2s" validate:"gte=0"`
	MaxMessageSize       int64         `env:"MAX_MESSAGE_SIZE,default=65536" validate:"min=1"`

	ProtocolErrors       bool   `env:"PROTOCOL_ERRORS,default=false"`
	ModerationEnabled    bool   `env:"MODERATION_ENABLED,default=false"`
	CharacterReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	HealthInterval  time.Duration `env:"HEALTH_INTERVAL,default=30s" validate:"gte=0"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
}
