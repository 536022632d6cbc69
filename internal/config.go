package internal

import "time"

type Config struct {
	Host           string `env:"HOST,required=true"`
	Port           int    `env:"PORT,required=true"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	// LimitMessages caps one history page; nil means unbounded.
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`

	// GenerationDeadline bounds the fallback reply-generation race.
	GenerationDeadline time.Duration `env:"GENERATION_DEADLINE,required=true"`
	GenerationModel    string        `env:"GENERATION_MODEL"`
}
