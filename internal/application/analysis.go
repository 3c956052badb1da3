package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
	"polyp-dashboard/internal/domain/segmentation"
)

// ErrEmptyUpload не приложен обязательный файл.
var ErrEmptyUpload = errors.New("empty upload")

// Evaluation результат сравнения маски предсказания с эталоном.
type Evaluation struct {
	Width  int
	Height int
	Counts segmentation.ConfusionCounts
	Result segmentation.MetricResult
	Label  segmentation.Label
}

// AnalyzeInput загруженные через дашборд файлы.
type AnalyzeInput struct {
	Image           []byte // снимок, необязателен
	ImageName       string
	Prediction      []byte
	PredictionName  string
	GroundTruth     []byte
	GroundTruthName string
	Threshold       int
}

// AnalysisService считает метрики сегментации для пары масок.
type AnalysisService struct {
	decoder   port.MaskDecoder
	uploads   port.UploadStore
	diagnoses port.DiagnosisGenerator
	newID     func() string
}

// NewAnalysisService создаёт сервис анализа. uploads может быть nil, тогда файлы не сохраняются.
func NewAnalysisService(decoder port.MaskDecoder, uploads port.UploadStore, diagnoses port.DiagnosisGenerator) *AnalysisService {
	return &AnalysisService{
		decoder:   decoder,
		uploads:   uploads,
		diagnoses: diagnoses,
		newID:     func() string { return uuid.NewString() },
	}
}

// Evaluate декодирует обе маски и считает по ним метрики.
func (s *AnalysisService) Evaluate(ctx context.Context, prediction, groundTruth []byte, threshold int) (*Evaluation, error) {
	if s.decoder == nil {
		return nil, errors.New("mask decoder is not configured")
	}
	if len(prediction) == 0 || len(groundTruth) == 0 {
		return nil, ErrEmptyUpload
	}

	pred, err := s.decoder.Decode(ctx, prediction)
	if err != nil {
		return nil, fmt.Errorf("decode prediction: %w", err)
	}
	truth, err := s.decoder.Decode(ctx, groundTruth)
	if err != nil {
		return nil, fmt.Errorf("decode ground truth: %w", err)
	}
	if !pred.SameSize(truth) {
		return nil, fmt.Errorf("prediction is %dx%d, ground truth is %dx%d: %w",
			pred.Width, pred.Height, truth.Width, truth.Height, segmentation.ErrShapeMismatch)
	}

	counts, err := segmentation.Confusion(pred.Pixels, truth.Pixels, threshold)
	if err != nil {
		return nil, err
	}
	result := counts.Metrics()

	return &Evaluation{
		Width:  pred.Width,
		Height: pred.Height,
		Counts: counts,
		Result: result,
		Label:  segmentation.Classify(result.IoU),
	}, nil
}

// Analyze считает метрики для загруженной пары масок, сохраняет файлы
// и дополняет результат синтетическим диагнозом.
func (s *AnalysisService) Analyze(ctx context.Context, in AnalyzeInput) (*entity.AnalysisResult, error) {
	eval, err := s.Evaluate(ctx, in.Prediction, in.GroundTruth, in.Threshold)
	if err != nil {
		return nil, err
	}

	res := &entity.AnalysisResult{
		ID:             s.newID(),
		Width:          eval.Width,
		Height:         eval.Height,
		Threshold:      in.Threshold,
		Counts:         eval.Counts,
		Metrics:        eval.Result,
		Classification: eval.Label,
		Diagnosis:      entity.Diagnosis{Type: eval.Label},
	}
	if s.diagnoses != nil {
		res.Diagnosis = s.diagnoses.Generate(eval.Label)
	}

	if s.uploads == nil {
		return res, nil
	}

	if len(in.Image) > 0 {
		if res.ImageURL, err = s.uploads.Save(ctx, res.ID+"-image", nameOr(in.ImageName, "upload"), in.Image); err != nil {
			return nil, err
		}
	}
	if res.PredictionURL, err = s.uploads.Save(ctx, res.ID+"-prediction", nameOr(in.PredictionName, "upload"), in.Prediction); err != nil {
		return nil, err
	}
	if res.GroundTruthURL, err = s.uploads.Save(ctx, res.ID+"-truth", nameOr(in.GroundTruthName, "upload"), in.GroundTruth); err != nil {
		return nil, err
	}

	return res, nil
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
