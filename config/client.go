package config

import "time"

type Client struct {
	ServerAddr     string        `yaml:"server_addr" env:"SERVER_ADDR" env-required:"true"`
	Name           string        `yaml:"name" env:"NAME" env-default:"pow-client"`
	Sessions       int           `yaml:"sessions" env:"CLIENT_SESSIONS" env-default:"1"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CLIENT_CONNECT_TIMEOUT" env-default:"5s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CLIENT_REQUEST_TIMEOUT" env-default:"5s" env-description:"I/O deadline for each exchange with the server"`
	SolveTimeout   time.Duration `yaml:"solve_timeout" env:"CLIENT_SOLVE_TIMEOUT" env-default:"1m"`
	RetryAttempts  int           `yaml:"retry_attempts" env:"CLIENT_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay     time.Duration `yaml:"retry_delay" env:"CLIENT_RETRY_DELAY" env-default:"1s"`
}
