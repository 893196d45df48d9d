// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/model"
)

// captchaGate enforces reCAPTCHA on public forms. Captcha is required and
// verified only when a secret is configured in site settings.
type captchaGate struct {
	settings *SettingsService
	verifier captcha.Verifier
}

func (g captchaGate) check(ctx context.Context, token, remoteIP string) error {
	secret, err := g.settings.RecaptchaSecret(ctx)
	if err != nil {
		return err
	}
	if secret == "" {
		return nil
	}
	if token == "" {
		return ErrCaptchaRequired
	}

	result, err := g.verifier.Verify(ctx, secret, token, remoteIP)
	if err != nil {
		return fmt.Errorf("verifying captcha: %w", err)
	}
	if !result.Success {
		slog.WarnContext(ctx, "captcha verification failed",
			"category", model.EventCategoryAuth,
			"error_codes", result.ErrorCodes,
			"remote_ip", remoteIP,
		)
		return ErrCaptchaFailed
	}
	return nil
}
