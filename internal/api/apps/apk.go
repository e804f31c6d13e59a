package apps

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sniff-api/sniff-server/internal/gateway"
)

const apkContentType = "application/vnd.android.package-archive"

// StreamAPK handles GET /v1/apk/:package_name/:channel[/:version_code].
//
// The main package bytes are relayed to the caller as they arrive from
// upstream; nothing is buffered beyond a fixed-size copy buffer. All
// resolution and the upstream connection happen before the response status is
// written, so every classifiable failure still produces a clean JSON
// envelope. Once headers are out, a failure can only truncate the connection;
// the session records it as an abort.
func (h *Handler) StreamAPK(c *gin.Context) {
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

	// The request context cancels the upstream transfer when the caller
	// disconnects mid-download.
	stream, err := h.svc.OpenStream(c.Request.Context(), packageName, ch, vc)
	if err != nil {
		respondError(c, err)
		return
	}
	defer stream.Body.Close()

	session := gateway.NewStreamSession(ch)

	c.Header("Content-Type", apkContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", stream.Manifest.SuggestedFilename))
	c.Header("Cache-Control", "no-cache")
	if stream.Size >= 0 {
		c.Header("Content-Length", strconv.FormatInt(stream.Size, 10))
	}
	c.Status(200)
	session.HeadersSent()

	session.Streaming()
	n, err := gateway.Relay(c.Writer, stream.Body)
	if err != nil {
		session.Abort(n)
		h.logger.Warn("apk stream truncated",
			"package", packageName,
			"channel", ch.String(),
			"bytes_relayed", n,
			"error", err.Error())
		return
	}
	session.Complete(n)
}
