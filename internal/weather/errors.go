package weather

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrCityNotFound      = errors.New("city not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnavailable       = errors.New("weather service unavailable")
	ErrMalformedResponse = errors.New("malformed weather response")
)

// User-facing messages for the error panel, selected by upstream status.
const (
	MsgInvalidAPIKey = "API key is invalid. Please check your configuration."
	MsgCityNotFound  = "City not found. Please check the spelling and try again."
	MsgRateLimited   = "Too many requests. Please wait a moment and try again."
	MsgUnavailable   = "Weather service is temporarily unavailable. Please try again later."
	MsgDefault       = "Unable to fetch weather data. Please check your internet connection and try again."
)

// UserMessage resolves any fetch error to the message shown in the error
// panel. Transport failures and malformed payloads share the generic message.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		return MsgInvalidAPIKey
	case errors.Is(err, ErrCityNotFound):
		return MsgCityNotFound
	case errors.Is(err, ErrRateLimited):
		return MsgRateLimited
	case errors.Is(err, ErrUnavailable):
		return MsgUnavailable
	default:
		return MsgDefault
	}
}

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

const (
	ErrorCategoryTimeout       ErrorCategory = "timeout"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey ErrorCategory = "invalid_api_key"
	ErrorCategoryNotFound      ErrorCategory = "not_found"
	ErrorCategoryRateLimited   ErrorCategory = "rate_limited"
	ErrorCategoryUpstream5xx   ErrorCategory = "upstream_5xx"
	ErrorCategoryParsing       ErrorCategory = "parsing"
	ErrorCategoryUnknown       ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, ErrInvalidAPIKey) {
		return ErrorCategoryInvalidAPIKey
	}
	if errors.Is(err, ErrCityNotFound) {
		return ErrorCategoryNotFound
	}
	if errors.Is(err, ErrRateLimited) {
		return ErrorCategoryRateLimited
	}
	if errors.Is(err, ErrUnavailable) {
		return ErrorCategoryUpstream5xx
	}
	if errors.Is(err, ErrMalformedResponse) {
		return ErrorCategoryParsing
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") {
		return ErrorCategoryNetwork
	}
	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") {
		return ErrorCategoryParsing
	}
	return ErrorCategoryUnknown
}
