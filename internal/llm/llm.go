// Package llm holds the two chat-completion provider clients and the
// rotation router that picks between them per website.
package llm

import (
	"context"
	"errors"
	"time"
)

// Default generation knobs; providers treat these as configuration.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
	DefaultTimeout     = 120 * time.Second
)

// ErrEmptyCompletion means the provider answered but returned no usable
// content.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Options tunes one completion call.
type Options struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Caller is a single-turn chat completion: one system message, one user
// message, one text answer.
type Caller interface {
	Complete(ctx context.Context, system, user string, opts Options) (string, error)
	Name() string
}
