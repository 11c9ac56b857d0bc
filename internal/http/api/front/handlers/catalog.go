package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pitchsmith/pitchsmith/internal/tone"
)

// CatalogHandler exposes the selectable tone catalog.
type CatalogHandler struct{}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Tones lists the tones a request may name.
func (h *CatalogHandler) Tones(c *gin.Context) {
	tones := tone.All()
	out := make([]gin.H, 0, len(tones))
	for _, t := range tones {
		out = append(out, gin.H{
			"name":  t.Name,
			"style": t.Style,
		})
	}
	c.JSON(http.StatusOK, gin.H{"tones": out, "default": tone.DefaultName})
}
