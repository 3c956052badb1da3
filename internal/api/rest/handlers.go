package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	app "polyp-dashboard/internal/application"
	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/segmentation"
)

const multipartMemory = 32 << 20

// DatasetService операции над датасетом, нужные API
type DatasetService interface {
	Reload(ctx context.Context) (int, error)
	List(ctx context.Context, q entity.Query) (entity.Page, error)
	Get(ctx context.Context, id string) (entity.ImageRecord, error)
	Stats(ctx context.Context) (entity.DatasetStats, error)
	Asset(ctx context.Context, id string, mode entity.ViewMode) ([]byte, error)
}

// Analyzer считает метрики для загруженных масок
type Analyzer interface {
	Analyze(ctx context.Context, in app.AnalyzeInput) (*entity.AnalysisResult, error)
}

// Handlers HTTP-обработчики дашборда
type Handlers struct {
	dataset   DatasetService
	analyzer  Analyzer
	threshold int
	log       zerolog.Logger
}

func NewHandlers(dataset DatasetService, analyzer Analyzer, threshold int, log zerolog.Logger) *Handlers {
	return &Handlers{dataset: dataset, analyzer: analyzer, threshold: threshold, log: log}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	newResponder(w, r, h.log).ok(map[string]string{"status": "ok"}, nil)
}

func (h *Handlers) listDataset(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r, h.log)
	params := r.URL.Query()

	split, ok := entity.ParseSplit(params.Get("set"))
	if !ok {
		rw.fail(http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("unknown set %q", params.Get("set")))
		return
	}
	label, ok := labelParam(params.Get("label"))
	if !ok {
		rw.fail(http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("unknown label %q", params.Get("label")))
		return
	}
	page, err := intParam(params.Get("page"))
	if err != nil {
		rw.fail(http.StatusBadRequest, "BAD_REQUEST", "page must be an integer")
		return
	}
	size, err := intParam(params.Get("page_size"))
	if err != nil {
		rw.fail(http.StatusBadRequest, "BAD_REQUEST", "page_size must be an integer")
		return
	}

	result, err := h.dataset.List(r.Context(), entity.Query{
		Search:   params.Get("search"),
		Split:    split,
		Label:    label,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		rw.err(err)
		return
	}
	rw.ok(result.Items, paginationMeta(result))
}

func (h *Handlers) getRecord(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r, h.log)

	rec, err := h.dataset.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		rw.err(err)
		return
	}
	rw.ok(rec, nil)
}

func (h *Handlers) viewRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rw := newResponder(w, r, h.log)

	mode, ok := entity.ParseViewMode(vars["mode"])
	if !ok {
		rw.fail(http.StatusBadRequest, "UNSUPPORTED_VIEW", fmt.Sprintf("unknown view mode %q", vars["mode"]))
		return
	}

	data, err := h.dataset.Asset(r.Context(), vars["id"], mode)
	if err != nil {
		rw.err(err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		h.log.Debug().Err(err).Msg("write image")
	}
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r, h.log)

	st, err := h.dataset.Stats(r.Context())
	if err != nil {
		rw.err(err)
		return
	}
	rw.ok(st, nil)
}

func (h *Handlers) setup(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r, h.log)

	n, err := h.dataset.Reload(r.Context())
	if err != nil {
		rw.err(err)
		return
	}
	rw.ok(map[string]int{"records": n}, nil)
}

func (h *Handlers) analyze(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r, h.log)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			rw.fail(http.StatusRequestEntityTooLarge, "TOO_LARGE", "request body is too large")
			return
		}
		rw.fail(http.StatusBadRequest, "BAD_REQUEST", "expected multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	threshold := h.threshold
	if v := r.FormValue("threshold"); v != "" {
		t, err := strconv.Atoi(v)
		if err != nil {
			rw.fail(http.StatusBadRequest, "INVALID_THRESHOLD", "threshold must be an integer")
			return
		}
		threshold = t
	}

	in := app.AnalyzeInput{Threshold: threshold}
	var err error
	if in.Image, in.ImageName, err = formFile(r.MultipartForm, "image"); err != nil {
		rw.err(err)
		return
	}
	if in.Prediction, in.PredictionName, err = formFile(r.MultipartForm, "prediction"); err != nil {
		rw.err(err)
		return
	}
	if in.GroundTruth, in.GroundTruthName, err = formFile(r.MultipartForm, "ground_truth"); err != nil {
		rw.err(err)
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), in)
	if err != nil {
		rw.err(err)
		return
	}

	h.log.Info().
		Str("id", res.ID).
		Float64("dice", res.Metrics.Dice).
		Float64("iou", res.Metrics.IoU).
		Str("label", string(res.Classification)).
		Msg("masks analyzed")
	rw.ok(res, nil)
}

// formFile читает файл из формы. Отсутствующее поле не ошибка.
func formFile(form *multipart.Form, field string) ([]byte, string, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, "", nil
	}

	f, err := headers[0].Open()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", field, err)
	}
	return data, headers[0].Filename, nil
}

// labelParam разбирает фильтр по классу. Пустая строка и "all" означают отсутствие фильтра.
func labelParam(v string) (segmentation.Label, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all":
		return "", true
	}
	return segmentation.ParseLabel(v)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
