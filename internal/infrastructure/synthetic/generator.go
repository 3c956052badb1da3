package synthetic

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"polyp-dashboard/internal/domain/entity"
	"polyp-dashboard/internal/domain/port"
	"polyp-dashboard/internal/domain/segmentation"
)

type colonSegment struct {
	name     string
	distance int // см от ануса до начала сегмента
}

var segments = []colonSegment{
	{"cecum", 0},
	{"ascending colon", 15},
	{"hepatic flexure", 30},
	{"transverse colon", 45},
	{"splenic flexure", 60},
	{"descending colon", 75},
	{"sigmoid colon", 90},
	{"rectum", 105},
}

var characteristics = []string{
	"flat", "elevated", "depressed", "sessile", "pedunculated",
	"ulcerated", "irregular borders", "smooth surface",
}

var landmarks = []string{
	"triangular fold", "circular fold", "appendiceal orifice",
	"ileocecal valve", "diverticulum", "vascular pattern",
	"taenia coli", "rectal valve",
}

var lowConfidenceReasons = []string{
	"image blur",
	"poor bowel preparation",
	"complex morphology",
	"unusual appearance",
	"partial visibility",
	"similar to normal tissue",
	"inadequate lighting",
	"rapid movement",
}

const (
	minConfidence       = 0.4
	lowConfidenceCutoff = 0.7
	minMetric           = 0.70
	maxMetric           = 0.95
)

// Generator выдаёт синтетические диагнозы и метрики вместо настоящего пайплайна модели.
// Безопасен для конкурентного использования.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator создаёт генератор. seed == 0 означает сид от текущего времени.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Generate строит описание находки для класса label.
func (g *Generator) Generate(label segmentation.Label) entity.Diagnosis {
	g.mu.Lock()
	defer g.mu.Unlock()

	seg := segments[g.rnd.Intn(len(segments))]
	d := entity.Diagnosis{
		Type:       label,
		Confidence: minConfidence + g.rnd.Float64()*(1-minConfidence),
		Location: &entity.Location{
			Segment:            seg.name,
			DistanceFromAnusCM: seg.distance + g.rnd.Intn(15),
			Landmarks:          g.pick(landmarks),
		},
	}

	if d.Confidence < lowConfidenceCutoff {
		d.LowConfidenceReasons = g.pick(lowConfidenceReasons)
	}

	if label != segmentation.LabelNormal {
		d.SizeMM = 5 + g.rnd.Intn(25)
		d.Characteristics = g.pick(characteristics)
	}

	return d
}

// Metrics возвращает метрики в диапазоне [0.70, 0.95], округлённые до 4 знаков.
func (g *Generator) Metrics() segmentation.MetricResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	return segmentation.MetricResult{
		Dice:      g.metric(),
		IoU:       g.metric(),
		Precision: g.metric(),
		Recall:    g.metric(),
	}
}

func (g *Generator) metric() float64 {
	v := minMetric + g.rnd.Float64()*(maxMetric-minMetric)
	return math.Round(v*1e4) / 1e4
}

// pick выбирает один или два различных элемента.
func (g *Generator) pick(from []string) []string {
	n := 1 + g.rnd.Intn(2)
	idx := g.rnd.Perm(len(from))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}

var (
	_ port.DiagnosisGenerator = (*Generator)(nil)
	_ port.MetricsGenerator   = (*Generator)(nil)
)
