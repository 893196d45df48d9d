// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/olegiv/dhefar-go/internal/model"
	"github.com/olegiv/dhefar-go/internal/service"
)

// multipartOverhead allows for form fields and part headers around the file.
const multipartOverhead = 1 << 20

// UploadResponse describes a stored file.
type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Upload handles POST /api/upload. The multipart form carries the file in
// "file" and the destination in "folder".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(model.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, service.ErrFileTooLarge)
			return
		}
		WriteBadRequest(w, "invalid_form", "Invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeServiceError(w, r, service.Invalid("file", "file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.uploads.Save(r.Context(), r.FormValue("folder"), file, header)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, UploadResponse{
		URL:      res.URL,
		FileName: res.FileName,
		Size:     res.Size,
		Width:    res.Width,
		Height:   res.Height,
	})
}
