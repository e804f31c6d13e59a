package apps

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sniff-api/sniff-server/internal/gateway"
)

// parseVersionCode reads the optional :version_code segment. An absent
// segment means "the channel's current version" (0); a present but
// non-numeric one is the caller's error, not a silent fallback to latest.
func parseVersionCode(c *gin.Context) (int, bool) {
	raw := c.Param("version_code")
	if raw == "" {
		return 0, true
	}
	vc, err := strconv.Atoi(raw)
	if err != nil || vc <= 0 {
		respondFail(c, http.StatusBadRequest, "invalid version code "+strconv.Quote(raw))
		return 0, false
	}
	return vc, true
}

// DownloadInfo handles GET /v1/download/:package_name/:channel[/:version_code].
// The manifest it returns carries time-limited signed URLs; clients are
// expected to consume them promptly rather than store them.
func (h *Handler) DownloadInfo(c *gin.Context) {
	packageName := c.Param("package_name")

	ch, err := gateway.ParseChannel(c.Param("channel"))
	if err != nil {
		respondError(c, err)
		return
	}

	vc, ok := parseVersionCode(c)
	if !ok {
		return
	}

	manifest, err := h.svc.ResolveDownload(c.Request.Context(), packageName, ch, vc)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, manifest)
}
