package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/recordlink/registrar/internal/core/domain"
	"github.com/recordlink/registrar/internal/core/ports"
)

// ContentHandler pins arbitrary uploads to the content store.
type ContentHandler struct {
	publisher ports.ContentPublisher
}

func NewContentHandler(publisher ports.ContentPublisher) *ContentHandler {
	return &ContentHandler{publisher: publisher}
}

type uploadResponse struct {
	CID  string `json:"cid"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Upload publishes the multipart field "file" and returns its CID.
//
// @Summary      Upload a file to IPFS
// @Tags         content
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to pin"
// @Success      200   {object}  uploadResponse
// @Failure      400   {object}  apierr.Response
// @Failure      401   {object}  apierr.Response
// @Failure      403   {object}  apierr.Response
// @Failure      500   {object}  apierr.Response
// @Router       /ipfs/upload [post]
func (h *ContentHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.Validationf("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Validationf("file could not be read")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.Validationf("file could not be read")
	}
	if len(content) == 0 {
		return domain.Validationf("file is empty")
	}

	cid, err := h.publisher.Publish(c.Request().Context(), content, fh.Filename)
	if err != nil {
		return domain.As(domain.ErrPublicationFailed, err)
	}

	return c.JSON(http.StatusOK, uploadResponse{CID: cid, Name: fh.Filename, Size: len(content)})
}
