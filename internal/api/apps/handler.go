// Package apps implements the public v1 endpoints: multi- and single-channel
// app details, the download manifest, and the streaming APK proxy.
//
// Every JSON route answers with the fixed envelope {success, data, error};
// clients branch on success and never parse error strings. The APK route is
// the one exception: it streams a binary body, so errors can only be reported
// before the first payload byte.
package apps

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sniff-api/sniff-server/internal/gateway"
)

// Handler owns the gateway service the endpoints delegate to.
type Handler struct {
	svc    *gateway.Service
	logger *slog.Logger
}

// NewHandler creates the v1 endpoint handler.
func NewHandler(svc *gateway.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// envelope is the fixed response shape of every JSON route.
type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondFail(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: false, Error: &msg})
}

// respondError maps the gateway failure taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, gateway.ErrUnknownChannel):
		respondFail(c, http.StatusBadRequest, msg)
	case errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, gateway.ErrChannelUnavailable),
		errors.Is(err, gateway.ErrVersionNotFound):
		respondFail(c, http.StatusNotFound, msg)
	case errors.Is(err, gateway.ErrUpstreamFetch):
		respondFail(c, http.StatusBadGateway, msg)
	default:
		respondFail(c, http.StatusInternalServerError, msg)
	}
}
