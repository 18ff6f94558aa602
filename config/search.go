package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"
)

type Search struct {
	Name             string        `yaml:"name" env:"NAME" env-default:"pow-search"`
	Data             string        `yaml:"data" env:"SEARCH_DATA" env-description:"hex data block, zero-padded on the left"`
	Fill             uint8         `yaml:"fill" env:"SEARCH_FILL" env-default:"123" env-description:"byte repeated across the block when SEARCH_DATA is empty"`
	Timeout          time.Duration `yaml:"timeout" env:"SEARCH_TIMEOUT" env-default:"0s" env-description:"0 searches until found or exhausted"`
	ProgressInterval uint64        `yaml:"progress_interval" env:"SEARCH_PROGRESS_INTERVAL" env-default:"1048576"`
}

// Block returns the data block to search over.
func (s Search) Block(width int) ([]byte, error) {
	if s.Data == "" {
		return bytes.Repeat([]byte{s.Fill}, width), nil
	}
	data, err := hex.DecodeString(s.Data)
	if err != nil {
		return nil, fmt.Errorf("SEARCH_DATA: %w", err)
	}
	return data, nil
}

func (s Search) Validate(width int) error {
	data, err := s.Block(width)
	if err != nil {
		return err
	}
	if len(data) > width {
		return fmt.Errorf("%w: data is %d bytes, width is %d", ErrInvalidWidth, len(data), width)
	}
	return nil
}
