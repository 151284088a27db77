package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

// apiResponse is the body of every /api reply. Code is 0 on success and the
// HTTP status otherwise.
type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

// OkPage replies with one page of a list and its paging meta.
func OkPage(c *gin.Context, items any, limit, offset int, total int64) {
	Ok(c, items, pageMeta(limit, offset, total))
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

func pageMeta(limit, offset int, total int64) map[string]any {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return map[string]any{
		"limit":    limit,
		"offset":   offset,
		"total":    total,
		"has_next": int64(offset+limit) < total,
	}
}

// fail maps service errors onto the envelope. Anything that is neither a
// missing row nor bad input came from storage or the model server.
func fail(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		Error(c, http.StatusNotFound, "not found", nil)
	case errors.As(err, &ve):
		meta := map[string]any{}
		if ve.Field != "" {
			meta["field"] = ve.Field
		}
		Error(c, http.StatusBadRequest, ve.Error(), meta)
	default:
		Error(c, http.StatusBadGateway, err.Error(), nil)
	}
}
