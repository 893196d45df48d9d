// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/dhefar-go/internal/captcha"
	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/store"
)

// ContactInput is a contact form submission.
type ContactInput struct {
	Name           string
	Email          string
	Phone          string
	Subject        string
	Message        string
	RecaptchaToken string
	RemoteIP       string
}

// ContactService accepts public contact form submissions.
type ContactService struct {
	queries *store.Queries
	captcha captchaGate
	now     func() time.Time
}

// NewContactService creates a new ContactService.
func NewContactService(q *store.Queries, settings *SettingsService, verifier captcha.Verifier) *ContactService {
	return &ContactService{
		queries: q,
		captcha: captchaGate{settings: settings, verifier: verifier},
		now:     time.Now,
	}
}

// Submit validates and stores a message.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (store.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	verr := &ValidationError{}
	if in.Name == "" {
		verr.Add("name", "name is required")
	}
	if in.Email == "" {
		verr.Add("email", "email is required")
	}
	if in.Subject == "" {
		verr.Add("subject", "subject is required")
	}
	if in.Message == "" {
		verr.Add("message", "message is required")
	}
	if err := verr.Err(); err != nil {
		return store.ContactMessage{}, err
	}

	if err := s.captcha.check(ctx, in.RecaptchaToken, in.RemoteIP); err != nil {
		return store.ContactMessage{}, err
	}

	msg, err := s.queries.CreateContactMessage(ctx, store.CreateContactMessageParams{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     strings.TrimSpace(in.Phone),
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return store.ContactMessage{}, fmt.Errorf("saving contact message: %w", err)
	}

	slog.InfoContext(ctx, "contact message received", "category", model.EventCategoryContact, "message_id", msg.ID)
	return msg, nil
}
