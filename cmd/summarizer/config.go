package main

import "time"

type Config struct {
	Host           string        `env:"HOST"`
	Port           int           `env:"PORT,default=8001" validate:"min=1,max=65535"`
	LogLevel       string        `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath string        `env:"BADGER_FILEPATH"`
	CacheTTL       time.Duration `env:"CACHE_TTL,default=1h" validate:"gte=0"`
	AllowedOrigin  string        `env:"ALLOWED_ORIGIN,default=http://localhost:5173"`
	MaxMessages    int           `env:"MAX_MESSAGES,default=200" validate:"gte=0"`
}
