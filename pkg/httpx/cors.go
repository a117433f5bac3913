// Package httpx holds HTTP helpers shared by the handler and its middleware.
package httpx

import "net/http"

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, X-User-Id",
	"Access-Control-Max-Age":       "86400",
}

// CORSHeaders returns a copy of the headers attached to every API response,
// errors and preflights included.
func CORSHeaders() map[string]string {
	headers := make(map[string]string, len(corsHeaders))
	for k, v := range corsHeaders {
		headers[k] = v
	}
	return headers
}

// SetCORSHeaders writes the same header set to h, for responses produced
// outside the handler.
func SetCORSHeaders(h http.Header) {
	for k, v := range corsHeaders {
		h.Set(k, v)
	}
}
