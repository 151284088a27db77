package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bettracker/internal/service"
)

type OCRHandler struct {
	OCR            *service.OCRService
	MaxUploadBytes int64
}

type base64ImageRequest struct {
	Image     string `json:"image"`
	Bookmaker string `json:"bookmaker"`
}

func (h *OCRHandler) Register(r gin.IRouter) {
	g := r.Group("/api/ocr")
	g.POST("/parse", h.parse)
	g.POST("/parse-base64", h.parseBase64)
}

func (h *OCRHandler) limit() int64 {
	if h.MaxUploadBytes <= 0 {
		return 10 << 20
	}
	return h.MaxUploadBytes
}

// @Summary Read tickets from a screenshot upload
// @Tags ocr
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "screenshot"
// @Param bookmaker formData string false "bookmaker hint"
// @Success 200 {object} llm.OCRResult
// @Router /api/ocr/parse [post]
func (h *OCRHandler) parse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limit()+(1<<20))
	fh, err := c.FormFile("file")
	if err != nil {
		Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	if fh.Size > h.limit() {
		Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.limit()+1))
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if int64(len(data)) > h.limit() {
		Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	out, err := h.OCR.ParseBytes(c.Request.Context(), data, c.PostForm("bookmaker"))
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}

// @Summary Read tickets from a base64 image
// @Tags ocr
// @Accept json
// @Produce json
// @Param body body base64ImageRequest true "image as base64 or data URI"
// @Success 200 {object} llm.OCRResult
// @Router /api/ocr/parse-base64 [post]
func (h *OCRHandler) parseBase64(c *gin.Context) {
	// base64 inflates by 4/3.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limit()*4/3+(1<<16))
	var req base64ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, "image too large", nil)
			return
		}
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	out, err := h.OCR.ParseBase64(c.Request.Context(), req.Image, req.Bookmaker)
	if err != nil {
		fail(c, err)
		return
	}
	Ok(c, out, nil)
}
