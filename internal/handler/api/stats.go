// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"net/http"

	"github.com/olegiv/dhefar-go/internal/model"
)

// StatsResponse holds the dashboard counters.
type StatsResponse struct {
	NewsPublished  int64 `json:"newsPublished"`
	NewsDrafts     int64 `json:"newsDrafts"`
	Reports        int64 `json:"reports"`
	Albums         int64 `json:"albums"`
	Photos         int64 `json:"photos"`
	BoardMembers   int64 `json:"boardMembers"`
	BankAccounts   int64 `json:"bankAccounts"`
	Users          int64 `json:"users"`
	UnreadMessages int64 `json:"unreadMessages"`
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var stats StatsResponse

	counters := []struct {
		dst   *int64
		count func(context.Context) (int64, error)
	}{
		{&stats.NewsPublished, func(ctx context.Context) (int64, error) {
			return h.queries.CountPostsByStatus(ctx, model.PostStatusPublish)
		}},
		{&stats.NewsDrafts, func(ctx context.Context) (int64, error) {
			return h.queries.CountPostsByStatus(ctx, model.PostStatusDraft)
		}},
		{&stats.Reports, h.queries.CountReports},
		{&stats.Albums, h.queries.CountAlbums},
		{&stats.Photos, h.queries.CountPhotos},
		{&stats.BoardMembers, h.queries.CountBoardMembers},
		{&stats.BankAccounts, h.queries.CountBankAccounts},
		{&stats.Users, h.queries.CountUsers},
		{&stats.UnreadMessages, h.queries.CountUnreadContactMessages},
	}

	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		*c.dst = n
	}

	WriteJSON(w, http.StatusOK, stats)
}
