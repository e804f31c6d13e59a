package apps

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sniff-api/sniff-server/internal/gateway"
	"github.com/sniff-api/sniff-server/internal/playstore"
)

// DetailsMulti handles GET /v1/details/:package_name.
//
// The response data maps channel name to details for every channel that
// carries the package; the same set, in canonical channel order, is exposed
// as the X-Available-Channels header so clients can pick a track without
// parsing the body.
func (h *Handler) DetailsMulti(c *gin.Context) {
	packageName := c.Param("package_name")

	agg, err := h.svc.Aggregate(c.Request.Context(), packageName)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make(map[string]*playstore.AppDetails, len(agg.Available))
	names := make([]string, len(agg.Available))
	for i, ch := range agg.Available {
		data[ch.String()] = agg.ByChannel[ch]
		names[i] = ch.String()
	}

	c.Header("X-Available-Channels", strings.Join(names, ","))
	respondOK(c, data)
}

// DetailsSingle handles GET /v1/details/:package_name/:channel.
func (h *Handler) DetailsSingle(c *gin.Context) {
	packageName := c.Param("package_name")

	ch, err := gateway.ParseChannel(c.Param("channel"))
	if err != nil {
		respondError(c, err)
		return
	}

	details, err := h.svc.DetailsFor(c.Request.Context(), packageName, ch)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, details)
}
