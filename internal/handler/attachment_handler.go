package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salmaanit26/Query-Management-System/internal/service"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
	"github.com/salmaanit26/Query-Management-System/pkg/response"
)

type attachmentOpener interface {
	Open(token string) (*service.AttachmentDownload, error)
}

// AttachmentHandler serves stored images behind signed tokens.
type AttachmentHandler struct {
	attachments attachmentOpener
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(attachments attachmentOpener) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Download godoc
// @Summary Download an attachment by signed token
// @Tags Attachments
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /attachments/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	if h.attachments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "attachment service not configured"))
		return
	}
	download, err := h.attachments.Open(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()
	c.Header("X-Content-Type-Options", "nosniff")
	inline := strings.HasPrefix(download.ContentType, "image/")
	response.Download(c, download.Filename, download.ContentType, download.Size, download.File, inline)
}
