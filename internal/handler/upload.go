package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salmaanit26/Query-Management-System/internal/service"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

// readUpload loads an optional multipart file into memory, bounded by maxBytes.
// A missing or empty part yields nil without error.
func readUpload(c *gin.Context, field string, maxBytes int64) (*service.AttachmentUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid multipart payload")
	}
	if header.Size == 0 {
		return nil, nil
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds %d bytes", field, maxBytes))
	}
	file, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAttachmentIO.Code, appErrors.ErrAttachmentIO.Status, "failed to read upload")
	}
	defer file.Close()

	reader := io.Reader(file)
	if maxBytes > 0 {
		reader = io.LimitReader(file, maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAttachmentIO.Code, appErrors.ErrAttachmentIO.Status, "failed to read upload")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s exceeds %d bytes", field, maxBytes))
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &service.AttachmentUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
