package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strconv"

	"github.com/nfnt/resize"
	log "github.com/sirupsen/logrus"
)

const maxThumbnailSize = 4096

func parseSize(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxThumbnailSize {
		return 0, fmt.Errorf("size must be an integer between 1 and %d", maxThumbnailSize)
	}
	return n, nil
}

// Thumbnail scales img so that its longer side is size pixels, keeping the
// aspect ratio. Images already within bounds are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	return resize.Thumbnail(uint(size), uint(size), img, resize.Lanczos3)
}

func (h *Handler) serveThumbnail(w http.ResponseWriter, r *http.Request, src io.Reader, size int) {
	img, format, err := image.Decode(src)
	if err != nil {
		h.writeError(w, http.StatusUnsupportedMediaType, "Invalid image format. Supported: JPEG, PNG, GIF")
		return
	}
	thumb := Thumbnail(img, size)

	var buf bytes.Buffer
	contentType := "image/jpeg"
	if format == "png" {
		contentType = "image/png"
		err = png.Encode(&buf, thumb)
	} else {
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		h.logger.WithField("err", err).Error("Could not encode thumbnail")
		h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.WithFields(log.Fields{
		"path":   r.URL.Path,
		"format": format,
		"width":  thumb.Bounds().Dx(),
		"height": thumb.Bounds().Dy(),
	}).Debug("Serving thumbnail")
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WithField("err", err).Error("Failed writing response")
	}
}
