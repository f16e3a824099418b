package tmdb

import (
	"strings"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL      string
	imageBaseURL string
	language     string
	timeout      time.Duration
	retryCount   int
	retryWait    time.Duration
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:      DefaultBaseURL,
		imageBaseURL: DefaultImageBaseURL,
		language:     "en-US",
		timeout:      10 * time.Second,
		retryCount:   2,
		retryWait:    500 * time.Millisecond,
	}
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(o *clientOptions) {
		if url != "" {
			o.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithImageBaseURL sets the base URL images are served from.
func WithImageBaseURL(url string) Option {
	return func(o *clientOptions) {
		if url != "" {
			o.imageBaseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithLanguage sets the language sent with every request.
func WithLanguage(language string) Option {
	return func(o *clientOptions) {
		o.language = language
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithRetryCount sets the maximum number of retry attempts.
func WithRetryCount(retries int) Option {
	return func(o *clientOptions) {
		if retries >= 0 {
			o.retryCount = retries
		}
	}
}

// WithRetryWait sets the initial delay between retry attempts.
func WithRetryWait(delay time.Duration) Option {
	return func(o *clientOptions) {
		o.retryWait = delay
	}
}
