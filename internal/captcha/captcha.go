// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package captcha verifies reCAPTCHA tokens against a siteverify endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultVerifyURL is Google's reCAPTCHA verification endpoint.
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	// Timeout for verification requests
	verifyTimeout = 10 * time.Second
)

// ErrEmptyToken is returned when Verify is called without a token.
var ErrEmptyToken = errors.New("missing captcha response")

// Result represents the siteverify API response.
type Result struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	Score       float64  `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks a captcha token. The secret is passed per call because it
// lives in site settings and may change at runtime.
type Verifier interface {
	Verify(ctx context.Context, secret, token, remoteIP string) (*Result, error)
}

// HTTPVerifier posts tokens to a siteverify endpoint.
type HTTPVerifier struct {
	verifyURL string
	client    *http.Client
}

// NewHTTPVerifier creates a verifier for verifyURL. An empty URL selects
// Google's endpoint.
func NewHTTPVerifier(verifyURL string) *HTTPVerifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &HTTPVerifier{
		verifyURL: verifyURL,
		client:    &http.Client{Timeout: verifyTimeout},
	}
}

// Verify checks the token with the remote API. A transport or decoding
// failure is returned as an error; a rejected token is a Result with
// Success set to false.
func (v *HTTPVerifier) Verify(ctx context.Context, secret, token, remoteIP string) (*Result, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}

	data := url.Values{}
	data.Set("secret", secret)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("captcha server returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse captcha response: %w", err)
	}

	return &result, nil
}
