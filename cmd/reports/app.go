package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ffcsa/reports/internal/application/reports"
	"github.com/ffcsa/reports/internal/domain/report"
	"github.com/ffcsa/reports/internal/infrastructure/config"
	"github.com/ffcsa/reports/internal/infrastructure/localline"
	"github.com/ffcsa/reports/internal/infrastructure/logger"
	"github.com/ffcsa/reports/internal/infrastructure/mailer"
	"github.com/ffcsa/reports/internal/infrastructure/persistence"
	"github.com/ffcsa/reports/internal/infrastructure/printing"
)

// app wires the report service and everything it needs. Both the serve and
// run commands build the same graph; serve adds the scheduler and HTTP API
// on top.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *persistence.Database
	renderer printing.PDFRenderer
	storage  *printing.FileSystemStorage
	runs     report.RunRepository
	service  *reports.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	client, err := localline.NewClient(&localline.Config{
		BaseURL:         cfg.Localline.BaseURL,
		Username:        cfg.Localline.Username,
		Password:        cfg.Localline.Password,
		RequestTimeout:  cfg.Localline.RequestTimeout,
		PollInterval:    cfg.Localline.PollInterval,
		PollLimit:       cfg.Localline.PollLimit,
		MaxDownloadSize: cfg.Localline.MaxDownloadSize,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("localline client: %w", err)
	}

	var renderer printing.PDFRenderer
	switch cfg.Reports.PDFRenderer {
	case "wkhtmltopdf":
		renderer, err = printing.NewWkhtmltopdfRenderer(&printing.WkhtmltopdfConfig{
			Logger: log,
		})
	default:
		renderer, err = printing.NewChromedpRenderer(&printing.ChromedpConfig{
			Logger: log,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("pdf renderer: %w", err)
	}

	storage, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: filepath.Join(cfg.Reports.OutputDir, "reports"),
		BaseURL:  "/api/v1/files",
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("report storage: %w", err)
	}

	var m mailer.Mailer
	if cfg.Mail.SendgridAPIKey == "" {
		log.Warn("no sendgrid API key configured, mails are logged instead of sent")
		m = mailer.NewDryRunMailer(log)
	} else {
		m, err = mailer.NewSendgridMailer(mailer.Config{
			APIKey:    cfg.Mail.SendgridAPIKey,
			FromEmail: cfg.Mail.From,
			FromName:  cfg.Mail.FromName,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("mailer: %w", err)
		}
	}

	colors, err := persistence.NewColorStore(cfg.Reports.ColorsPath)
	if err != nil {
		return nil, fmt.Errorf("dropsite colors: %w", err)
	}

	db, err := persistence.NewDatabaseWithLogger(cfg.Database.Path, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		return nil, fmt.Errorf("run history database: %w", err)
	}
	runs := persistence.NewGormRunRepository(db.DB)

	service := reports.NewService(
		reports.Config{
			OverridesPath:    cfg.Reports.OverridesPath,
			VendorOrderPath:  cfg.Reports.VendorOrderPath,
			ChecklistsTo:     cfg.Mail.Checklists,
			DeliveryOrdersTo: cfg.Mail.DeliveryOrders,
			AnalyticsTo:      cfg.Mail.Analytics,
		},
		client,
		printing.NewTemplateEngine(),
		renderer,
		storage,
		m,
		mailer.NewNotifier(m, cfg.Mail.Operator),
		colors,
		runs,
		log,
	)

	return &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		renderer: renderer,
		storage:  storage,
		runs:     runs,
		service:  service,
	}, nil
}

// Close releases the renderer and database; call on shutdown.
func (a *app) Close() {
	if err := a.renderer.Close(); err != nil {
		a.logger.Error("error closing renderer", zap.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
	_ = logger.Sync(a.logger)
}
