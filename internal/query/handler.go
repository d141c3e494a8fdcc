package query

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/HonRosie/probable-octo-tribble/internal/core/errors"
	"github.com/HonRosie/probable-octo-tribble/internal/decoder"
)

// RegisterRoutes registers the query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	// GET /hourly?customer_id=...&start=2021-03-01 00:30:00+00:00&end=...
	r.GET("/hourly", s.HandleHourlyCounts)
}

// HandleHourlyCounts handles GET /hourly.
// Query parameters: customer_id, start, end (RFC 3339-style instants with offset).
func (s *Service) HandleHourlyCounts(c *gin.Context) {
	var params struct {
		CustomerID string `form:"customer_id" binding:"required"`
		Start      string `form:"start" binding:"required"`
		End        string `form:"end" binding:"required"`
	}

	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParamsError,
			Message:   "Missing or invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	// Timestamps arrive in the same textual form the events source uses,
	// so they go through the same parser.
	start, err := decoder.ParseTimestamp(params.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParamsError,
			Message:   "Invalid start timestamp",
			Details:   err.Error(),
		})
		return
	}

	end, err := decoder.ParseTimestamp(params.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidParamsError,
			Message:   "Invalid end timestamp",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.HourlyCounts(c.Request.Context(), HourlyCountsRequest{
		CustomerID: params.CustomerID,
		Start:      start,
		End:        end,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidRangeError,
				Message:   "Invalid query range",
				Details:   err.Error(),
			})
			return
		}

		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query hourly counts",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
