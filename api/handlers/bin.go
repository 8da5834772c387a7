package handlers

import (
	"net/http"

	"binbot/internal/lookup"
	"binbot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// BINHandler serves the lookup coordinator as JSON
type BINHandler struct {
	lookup BINLookup
	logger *logger.Logger
}

func NewBINHandler(lookup BINLookup, logger *logger.Logger) *BINHandler {
	return &BINHandler{
		lookup: lookup,
		logger: logger,
	}
}

// Lookup answers GET /api/v1/bin/:bin with the normalized record and the
// provider that supplied it.
func (h *BINHandler) Lookup(c *gin.Context) {
	raw := c.Param("bin")

	result, err := h.lookup.Lookup(c.Request.Context(), raw)
	if err != nil {
		status, body := lookupErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.WithRequestID(c.GetString("request_id")).Warnw("BIN lookup failed",
				"input", raw,
				"error", err)
		}
		c.JSON(status, gin.H{"error": body})
		return
	}

	c.JSON(http.StatusOK, result)
}

func lookupErrorResponse(err error) (int, errorBody) {
	switch e := err.(type) {
	case lookup.InvalidIdentifierError:
		return http.StatusBadRequest, errorBody{Code: e.Code(), Message: e.Message()}
	case lookup.NotFoundError:
		return http.StatusNotFound, errorBody{Code: e.Code(), Message: e.Message(), Suggestions: lookup.SuggestedBINs}
	case lookup.AllProvidersFailedError:
		return http.StatusBadGateway, errorBody{Code: e.Code(), Message: e.Message(), Suggestions: lookup.SuggestedBINs}
	default:
		return http.StatusInternalServerError, errorBody{Code: "INTERNAL_ERROR", Message: "unexpected lookup error"}
	}
}
