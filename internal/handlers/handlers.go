package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"

	"github.com/Brownie44l1/dataset-api/internal/dataset"
	"github.com/Brownie44l1/dataset-api/internal/model"
	log "github.com/sirupsen/logrus"
)

// Classifier labels a decoded image. *model.Classifier implements it.
type Classifier interface {
	Classify(img image.Image) (*model.Prediction, error)
}

type Handler struct {
	dataset    *dataset.Dataset
	classifier Classifier
	logger     *log.Entry
}

type Option func(*Handler)

// WithClassifier enables the classify endpoint.
func WithClassifier(c Classifier) Option {
	return func(h *Handler) {
		h.classifier = c
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

func NewHandler(d *dataset.Dataset, opts ...Option) *Handler {
	h := &Handler{
		dataset: d,
		logger:  log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Categories serves the category list.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.dataset.Categories(r.Context())
	if err != nil {
		h.fail(w, r, err, "Category List Not Found")
		return
	}
	h.writeJSON(w, http.StatusOK, categories)
}

// Images serves the file names of a category's images.
func (h *Handler) Images(w http.ResponseWriter, r *http.Request) {
	images, err := h.dataset.Images(r.Context(), r.PathValue("category"))
	if err != nil {
		h.fail(w, r, err, "Category not found")
		return
	}
	h.writeJSON(w, http.StatusOK, images)
}

// Image serves the raw bytes of one image, or a thumbnail of it when the
// size query parameter is present.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	var size int
	if s := r.URL.Query().Get("size"); s != "" {
		var err error
		if size, err = parseSize(s); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	blob, err := h.dataset.Image(r.Context(), r.PathValue("category"), r.PathValue("image_name"))
	if err != nil {
		h.fail(w, r, err, "Image not found")
		return
	}
	defer blob.Close()

	if size > 0 {
		h.serveThumbnail(w, r, blob, size)
		return
	}

	info, err := blob.Stat()
	if err != nil {
		h.fail(w, r, err, "Image not found")
		return
	}
	// ServeContent infers the content type from the name and handles HEAD,
	// Range and conditional requests.
	http.ServeContent(w, r, info.Name, info.ModTime, blob)
}

// Annotations serves the parsed annotation records of one image.
func (h *Handler) Annotations(w http.ResponseWriter, r *http.Request) {
	annotations, err := h.dataset.Annotations(r.Context(), r.PathValue("category"), r.PathValue("image_name"))
	if err != nil {
		h.fail(w, r, err, "Annotation file not found")
		return
	}
	h.writeJSON(w, http.StatusOK, annotations)
}

// Classify runs the configured model on one image.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	if h.classifier == nil {
		h.writeError(w, http.StatusNotFound, "No model loaded")
		return
	}

	blob, err := h.dataset.Image(r.Context(), r.PathValue("category"), r.PathValue("image_name"))
	if err != nil {
		h.fail(w, r, err, "Image not found")
		return
	}
	defer blob.Close()

	img, format, err := image.Decode(blob)
	if err != nil {
		h.writeError(w, http.StatusUnsupportedMediaType, "Invalid image format. Supported: JPEG, PNG, GIF")
		return
	}
	h.logger.WithFields(log.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("Decoded image for classification")

	result, err := h.classifier.Classify(img)
	if err != nil {
		h.logger.WithField("err", err).Error("Prediction failed")
		h.writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// fail maps dataset errors to HTTP responses. notFound is the detail sent
// when err is a miss.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	logger := h.logger.WithFields(log.Fields{
		"path": r.URL.Path,
		"err":  err,
	})
	switch {
	case errors.Is(err, dataset.ErrInvalidName):
		logger.Debug("Invalid name")
		h.writeError(w, http.StatusBadRequest, "Invalid name")
	case errors.Is(err, dataset.ErrNotFound):
		logger.Debug("Not found")
		h.writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, dataset.ErrMalformed):
		logger.Warn("Malformed annotation file")
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled):
		logger.Debug("Request canceled")
	default:
		logger.Error()
		h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, errorResponse{Detail: detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.WithField("err", err).Error("Failed writing response")
	}
}
