package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"donorscan/internal/hubspot"
	"donorscan/pkg/models"
)

// ContactHandler exposes the directory search used when a reviewer
// re-matches a record by hand.
type ContactHandler struct {
	matcher *hubspot.Matcher
}

func NewContactHandler(matcher *hubspot.Matcher) *ContactHandler {
	return &ContactHandler{matcher: matcher}
}

// Search scores directory contacts against a name and optional zip, the
// same way the pipeline's automatic matching does.
func (h *ContactHandler) Search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if !h.matcher.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "contact directory not configured"})
		return
	}

	candidates, err := h.matcher.Match(c.Request.Context(), name, c.Query("zip"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if candidates == nil {
		candidates = []models.MatchCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{"contacts": candidates})
}
