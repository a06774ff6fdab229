package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/soocke/fin-annotator-go/config"
	"github.com/soocke/fin-annotator-go/domain/dataset"
	"github.com/soocke/fin-annotator-go/domain/detect"
	"github.com/soocke/fin-annotator-go/domain/progress"
	"github.com/soocke/fin-annotator-go/ui/model"
	"github.com/soocke/fin-annotator-go/ui/presenter"
	"github.com/soocke/fin-annotator-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Dataset  *dataset.Dataset
	Images   *dataset.ImageLoader
	Progress *progress.Store // nil when the progress database could not be opened
	Detector *detect.HTTPDetector

	Sessions   *model.SessionModel
	Navigation *model.NavigationModel
	Mode       *model.ModeModel
	Timer      *model.ReviewTimer

	RootView *view.RootView

	// Presenters
	PredictionPresenter *presenter.PredictionPresenter
	AnnotatorPresenter  *presenter.AnnotatorPresenter
	ModePresenter       *presenter.ModePresenter
	ReviewPresenter     *presenter.ReviewPresenter
	StatePresenter      *presenter.EditorStatePresenter
	Loop                *presenter.Loop
}

// BuildContainer constructs all components. Side-effects are limited to
// opening the progress database.
func BuildContainer(cfg *config.Config, logger *slog.Logger, cfgPath string) (*AppContainer, error) {
	if cfg.DatasetRoot == "" {
		return nil, fmt.Errorf("dataset root not configured")
	}
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Dataset = dataset.New(cfg.DatasetRoot)
	loader, err := dataset.NewImageLoader(cfg.ImageCacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("image cache: %w", err)
	}
	c.Images = loader

	if cfg.ProgressDB != "" {
		store, err := progress.Open(cfg.ProgressDB)
		if err != nil {
			// annotating still works without remembered positions
			logger.Warn("progress database unavailable", "path", cfg.ProgressDB, "error", err)
		} else {
			c.Progress = store
		}
	}

	var det detect.Detector
	if cfg.DetectorURL != "" {
		c.Detector = detect.NewHTTPDetector(cfg.DetectorURL, &http.Client{Timeout: detect.DefaultTimeout}, logger)
		det = c.Detector
	}

	c.Sessions = model.NewSessionModel()
	c.Navigation = model.NewNavigationModel()
	c.Mode = &model.ModeModel{}
	c.Timer = model.NewReviewTimer()

	c.RootView = view.NewRootView(cfg, cfgPath, logger)

	c.PredictionPresenter = presenter.NewPredictionPresenter(det, logger)
	deps := presenter.AnnotatorDeps{
		Repo:      c.Dataset,
		Images:    c.Images,
		Predictor: c.PredictionPresenter,
		Sessions:  c.Sessions,
		Nav:       c.Navigation,
		Mode:      c.Mode,
		Timer:     c.Timer,
		View:      c.RootView,
	}
	// a nil *progress.Store must not end up in the interface
	if c.Progress != nil {
		deps.Progress = c.Progress
	}
	c.AnnotatorPresenter = presenter.NewAnnotatorPresenter(cfg, deps, logger)
	c.PredictionPresenter.OnResult = c.AnnotatorPresenter.OnPrediction
	c.ModePresenter = presenter.NewModePresenter(c.Mode, c.PredictionPresenter, c.AnnotatorPresenter, c.RootView)
	c.ReviewPresenter = presenter.NewReviewPresenter(c.Timer, c.AnnotatorPresenter, c.RootView)
	c.StatePresenter = presenter.NewEditorStatePresenter(c.AnnotatorPresenter, c.RootView)
	return c, nil
}

// Close releases background resources.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	c.PredictionPresenter.Close()
	if c.Progress != nil {
		if err := c.Progress.Close(); err != nil {
			c.Logger.Error("close progress database", "error", err)
		}
	}
}
