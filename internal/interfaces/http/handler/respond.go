package handler

import (
	"bytes"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/papermill/portal/internal/domain/shared"
	"github.com/papermill/portal/internal/infrastructure/export"
	"github.com/papermill/portal/internal/interfaces/http/dto"
)

// respondPage sends one page of a listing with its meta. extra, when
// set, is sent as data in place of the bare items.
func respondPage[T any](c *gin.Context, p shared.Page[T], extra any) {
	c.JSON(http.StatusOK, dto.NewPageResponse(p, extra))
}

// exportFormat reads ?format=csv|xlsx. ok is false when the request
// asked for JSON.
func (h *BaseHandler) exportFormat(c *gin.Context) (f export.Format, ok bool, err error) {
	raw := c.Query("format")
	if raw == "" || raw == "json" {
		return "", false, nil
	}
	f, err = export.ParseFormat(raw)
	if err != nil {
		return "", false, err
	}
	return f, true, nil
}

// sendExport writes a table as a download. The workbook is built in memory
// first so a failure can still be answered with an error envelope.
func (h *BaseHandler) sendExport(c *gin.Context, name string, f export.Format, t export.Table) {
	var buf bytes.Buffer
	if err := export.Write(&buf, f, t); err != nil {
		h.HandleError(c, err)
		return
	}
	filename := export.Filename(name, time.Now(), f)
	c.Header("Content-Disposition", contentDisposition("attachment", filename))
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

// contentDisposition quotes or RFC 2231-encodes the filename as needed
func contentDisposition(disposition, filename string) string {
	return mime.FormatMediaType(disposition, map[string]string{"filename": filename})
}
