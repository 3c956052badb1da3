package entity

import (
	"strings"

	"polyp-dashboard/internal/domain/segmentation"
)

// Split часть датасета, к которой отнесено изображение
type Split string

const (
	SplitTraining   Split = "training"
	SplitValidation Split = "validation"
	SplitTest       Split = "test"
)

// Splits перечисляет части датасета в порядке отображения
var Splits = []Split{SplitTraining, SplitValidation, SplitTest}

// AssignSplit детерминированно делит датасет 70/15/15 по сумме кодов символов ID.
func AssignSplit(id string) Split {
	hash := 0
	for _, r := range id {
		hash += int(r)
	}

	switch value := hash % 100; {
	case value < 70:
		return SplitTraining
	case value < 85:
		return SplitValidation
	default:
		return SplitTest
	}
}

// ParseSplit разбирает фильтр по части датасета. Пустая строка и "all" означают отсутствие фильтра.
func ParseSplit(s string) (Split, bool) {
	switch v := Split(strings.ToLower(strings.TrimSpace(s))); v {
	case "", "all":
		return "", true
	case SplitTraining, SplitValidation, SplitTest:
		return v, true
	}
	return "", false
}

// MetricsSource откуда взялись метрики записи
type MetricsSource string

const (
	MetricsComputed  MetricsSource = "computed"  // посчитаны по эталонной маске
	MetricsSynthetic MetricsSource = "synthetic" // эталона нет, значения сгенерированы
)

// Location положение находки в толстой кишке
type Location struct {
	Segment            string   `json:"segment"`
	DistanceFromAnusCM int      `json:"distance_from_anus_cm"`
	Landmarks          []string `json:"landmarks"`
}

// Diagnosis синтетическое диагностическое описание изображения
type Diagnosis struct {
	Type                 segmentation.Label `json:"type"`
	Confidence           float64            `json:"confidence"`
	LowConfidenceReasons []string           `json:"low_confidence_reasons,omitempty"`
	SizeMM               int                `json:"size_mm,omitempty"`
	Location             *Location          `json:"location,omitempty"`
	Characteristics      []string           `json:"characteristics,omitempty"`
}

// SamplePaths файлы одного образца, найденные на диске
type SamplePaths struct {
	ID              string
	ImagePath       string
	MaskPath        string
	GroundTruthPath string // пусто, если эталонной маски нет
}

// ImageRecord запись датасета для дашборда
type ImageRecord struct {
	ID              string                    `json:"id"`
	ImagePath       string                    `json:"-"`
	MaskPath        string                    `json:"-"`
	GroundTruthPath string                    `json:"-"`
	Split           Split                     `json:"set"`
	Metrics         segmentation.MetricResult `json:"metrics"`
	MetricsSource   MetricsSource             `json:"metrics_source"`
	Classification  segmentation.Label        `json:"classification"`
	Diagnosis       Diagnosis                 `json:"diagnosis"`
}

// Query параметры выборки из датасета
type Query struct {
	Search   string
	Split    Split
	Label    segmentation.Label // пусто, если фильтра нет
	Page     int
	PageSize int
}

// Page страница результатов выборки
type Page struct {
	Items      []ImageRecord `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
	TotalCount int           `json:"total_count"`
}

// HasNext есть ли следующая страница
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev есть ли предыдущая страница
func (p Page) HasPrev() bool { return p.Page > 1 }

// MetricSummary среднее и стандартное отклонение метрики
type MetricSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// SplitStats сводка по одной части датасета
type SplitStats struct {
	Split      Split         `json:"set"`
	Count      int           `json:"count"`
	Percentage float64       `json:"percentage"`
	Dice       MetricSummary `json:"dice"`
	IoU        MetricSummary `json:"iou"`
}

// DatasetStats сводка по всему датасету
type DatasetStats struct {
	Total  int                        `json:"total"`
	Splits []SplitStats               `json:"splits"`
	Labels map[segmentation.Label]int `json:"labels"`
}
