// handlers_signature.go - Signature upload handlers
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/varun160398/auto-invoice-portal/internal/config"
	"github.com/varun160398/auto-invoice-portal/internal/signature"
	"github.com/varun160398/auto-invoice-portal/internal/storage"
)

// SignatureHandlerImpl implements the SignatureHandler interface
type SignatureHandlerImpl struct {
	cfg        *config.AppConfig
	signatures storage.SignatureStore
	logger     zerolog.Logger
}

// NewSignatureHandler creates a new signature handler
func NewSignatureHandler(cfg *config.AppConfig, signatures storage.SignatureStore, logger zerolog.Logger) SignatureHandler {
	return &SignatureHandlerImpl{
		cfg:        cfg,
		signatures: signatures,
		logger:     logger.With().Str("component", "signatures").Logger(),
	}
}

type uploadSignatureResponse struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// HandleUploadSignature flattens an uploaded image onto white and stores
// it as PNG under the expert's safe filename.
func (h *SignatureHandlerImpl) HandleUploadSignature(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return NewValidationError("name")
	}
	if _, err := storage.SignatureKey(name); err != nil {
		return NewFieldError("name", err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	if !h.cfg.AllowsSignature(file.Filename) {
		return NewFieldError("file", fmt.Errorf("unsupported image type %q", filepath.Ext(file.Filename)))
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	normalized, err := signature.NormalizeUpload(data)
	if err != nil {
		var de *signature.DecodeError
		if errors.As(err, &de) {
			return NewBadRequestError("file is not a readable image", err)
		}
		return NewInternalError("failed to convert signature", err)
	}

	key, err := h.signatures.Save(c.Request().Context(), name, normalized)
	if err != nil {
		return NewInternalError("failed to store signature", err)
	}

	h.logger.Info().Str("expert", name).Str("key", key).Msg("signature stored")
	return c.JSON(http.StatusCreated, uploadSignatureResponse{Name: name, Key: key})
}
