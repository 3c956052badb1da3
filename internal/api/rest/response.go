package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	app "polyp-dashboard/internal/application"
	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
	"polyp-dashboard/internal/domain/segmentation"
	"polyp-dashboard/internal/infrastructure/vision"
)

// Envelope общий формат ответа API
type Envelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *APIError `json:"error,omitempty"`
	Meta      *Meta     `json:"meta,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalPages int  `json:"total_pages"`
	TotalCount int  `json:"total_count"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func paginationMeta(p entity.Page) *Meta {
	return &Meta{Pagination: &Pagination{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		TotalCount: p.TotalCount,
		HasNext:    p.HasNext(),
		HasPrev:    p.HasPrev(),
	}}
}

// responder пишет ответы в рамках одного запроса
type responder struct {
	w         http.ResponseWriter
	requestID string
	log       zerolog.Logger
}

func newResponder(w http.ResponseWriter, r *http.Request, log zerolog.Logger) *responder {
	id := RequestID(r.Context())
	return &responder{w: w, requestID: id, log: log.With().Str("request_id", id).Logger()}
}

func (rw *responder) ok(data any, meta *Meta) {
	rw.write(http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

func (rw *responder) fail(status int, code, message string) {
	rw.write(status, Envelope{Error: &APIError{Code: code, Message: message}})
}

// err переводит ошибку сервиса в HTTP-статус
func (rw *responder) err(err error) {
	switch {
	case errors.Is(err, port.ErrNotFound):
		rw.fail(http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, segmentation.ErrShapeMismatch):
		rw.fail(http.StatusBadRequest, "SHAPE_MISMATCH", err.Error())
	case errors.Is(err, segmentation.ErrInvalidThreshold):
		rw.fail(http.StatusBadRequest, "INVALID_THRESHOLD", err.Error())
	case errors.Is(err, vision.ErrDecode):
		rw.fail(http.StatusBadRequest, "DECODE_FAILED", err.Error())
	case errors.Is(err, app.ErrEmptyUpload):
		rw.fail(http.StatusBadRequest, "EMPTY_UPLOAD", err.Error())
	case errors.Is(err, app.ErrUnsupportedView):
		rw.fail(http.StatusBadRequest, "UNSUPPORTED_VIEW", err.Error())
	default:
		rw.log.Error().Err(err).Msg("request failed")
		rw.fail(http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func (rw *responder) write(status int, body Envelope) {
	body.Timestamp = time.Now().UTC()
	body.RequestID = rw.requestID

	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(body); err != nil {
		rw.log.Warn().Err(err).Msg("write response")
	}
}
