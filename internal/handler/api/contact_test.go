// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/testutil"
)

func (s *testServer) submitContact(subject string) int64 {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/contact", ContactRequest{
		Name: "Visitor", Email: "visitor@example.com", Subject: subject, Message: "Hello",
	}, nil)
	requireStatus(s.t, w, http.StatusCreated)
	resp := decodeBody[struct {
		Success bool  `json:"success"`
		ID      int64 `json:"id"`
	}](s.t, w)
	require.True(s.t, resp.Success)
	return resp.ID
}

func TestContact_SubmitIsPublic(t *testing.T) {
	s := newTestServer(t)
	id := s.submitContact("Donation question")
	assert.NotZero(t, id)

	w := s.do(http.MethodPost, "/api/contact", ContactRequest{Name: "Visitor"}, nil)
	resp := requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")
	assert.Contains(t, resp.Fields, "email")
}

func TestContact_CaptchaWhenConfigured(t *testing.T) {
	s := newTestServer(t)
	testutil.SetSetting(t, s.db, model.SettingRecaptchaSecretKey, "server-secret")

	w := s.do(http.MethodPost, "/api/contact", ContactRequest{
		Name: "Visitor", Email: "visitor@example.com", Subject: "Hi", Message: "Hello",
	}, nil)
	requireErrorCode(t, w, http.StatusBadRequest, "captcha_required")

	w = s.do(http.MethodPost, "/api/contact", ContactRequest{
		Name: "Visitor", Email: "visitor@example.com", Subject: "Hi", Message: "Hello", RecaptchaToken: "tok",
	}, nil)
	requireStatus(t, w, http.StatusCreated)
}

func TestContact_AdminInbox(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.admin()
	first := s.submitContact("First")
	second := s.submitContact("Second")
	s.submitContact("Third")

	w := s.do(http.MethodGet, "/api/contact", nil, nil)
	requireErrorCode(t, w, http.StatusUnauthorized, "unauthorized")

	w = s.do(http.MethodGet, "/api/contact", nil, cookie)
	requireStatus(t, w, http.StatusOK)
	messages := decodeBody[[]ContactMessageResponse](t, w)
	require.Len(t, messages, 3)
	assert.Equal(t, "Third", messages[0].Subject, "newest first")

	w = s.do(http.MethodPut, "/api/contact", ContactIDsRequest{IDs: []int64{first}}, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/contact?unread=true", nil, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decodeBody[[]ContactMessageResponse](t, w), 2)

	w = s.do(http.MethodDelete, "/api/contact", ContactIDsRequest{IDs: []int64{second}}, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"deleted":1,"message":"Messages deleted"}`, w.Body.String())

	// Without ids every unread message is marked read.
	w = s.do(http.MethodPut, "/api/contact", nil, cookie)
	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, `{"updated":1}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/contact?unread=true", nil, cookie)
	assert.Empty(t, decodeBody[[]ContactMessageResponse](t, w))

	w = s.do(http.MethodDelete, "/api/contact", ContactIDsRequest{}, cookie)
	requireErrorCode(t, w, http.StatusBadRequest, "validation_failed")
}
