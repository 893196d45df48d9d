// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/service"
)

// GetSettings handles GET /api/settings. Secret settings are never included.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Public(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/settings. The body is an object of
// setting keys; values may be strings, numbers or booleans.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return
	}
	if len(raw) == 0 {
		writeServiceError(w, r, service.Invalid("settings", "no settings given"))
		return
	}

	values := make(map[string]string, len(raw))
	verr := &service.ValidationError{}
	for key, v := range raw {
		s, err := settingValue(v)
		if err != nil {
			verr.Add(key, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		values[key] = s
	}
	if err := verr.Err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.settings.Update(r.Context(), values); err != nil {
		writeServiceError(w, r, err)
		return
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	_ = h.events.LogInfo(r.Context(), model.EventCategorySettings, "settings updated",
		h.sessionUserID(r), map[string]any{"keys": keys})

	settings, err := h.settings.Public(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// settingValue converts a JSON scalar to the stored string form.
func settingValue(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", fmt.Errorf("value must not be null")
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", fmt.Errorf("value must be a string, number or boolean")
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", err
		}
		return n.String(), nil
	}
}
