package container

import (
	"github.com/rs/zerolog"

	app "polyp-dashboard/internal/application"
	"polyp-dashboard/internal/domain/port"
)

// Ports внешние зависимости сервисов
type Ports struct {
	Users       port.UserRepository
	Dataset     port.DatasetRepository
	Source      port.DatasetSource
	Uploads     port.UploadStore
	Decoder     port.MaskDecoder
	Overlay     port.OverlayRenderer
	Diagnoses   port.DiagnosisGenerator
	MetricsMock port.MetricsGenerator
}

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
	DatasetService  *app.DatasetService
}

func New(cfg app.DatasetConfig, p Ports, log zerolog.Logger) *Container {
	userService := app.NewUserService(p.Users)
	analysisService := app.NewAnalysisService(p.Decoder, p.Uploads, p.Diagnoses)
	datasetService := app.NewDatasetService(cfg, p.Dataset, p.Source, p.Decoder, p.Overlay, p.Diagnoses, p.MetricsMock, log)

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
		DatasetService:  datasetService,
	}
}
