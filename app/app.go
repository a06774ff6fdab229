package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/fin-annotator-go/config"
	"github.com/soocke/fin-annotator-go/domain/annotation"
	"github.com/soocke/fin-annotator-go/ui/presenter"
	"github.com/soocke/fin-annotator-go/ui/theme"
	"github.com/soocke/fin-annotator-go/ui/view"
)

const (
	tick = 33 * time.Millisecond
)

type app struct {
	container *AppContainer
	logger    *slog.Logger
	afterID   string
	closing   bool
}

// NewApp builds the container and sizes the main window.
func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) (*app, error) {
	c, err := BuildContainer(cfg, logger, cfgPath)
	if err != nil {
		return nil, err
	}
	a := &app{container: c, logger: logger}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+60+40", cfg.WindowWidth, cfg.WindowHeight))
	return a, nil
}

// Start builds the UI, opens the configured split and blocks in the Tk loop.
func (a *app) Start() {
	c := a.container
	ann := c.AnnotatorPresenter
	theme.InitStyles()
	c.RootView.Build(view.Handlers{
		Pointer: view.PointerHandlers{
			Down: ann.PointerDown,
			Move: ann.PointerMove,
			Up:   ann.PointerUp,
		},
		Next:           func() { _ = ann.Next() },
		Previous:       func() { _ = ann.Previous() },
		Save:           func() { _ = ann.Save() },
		Reload:         func() { _ = ann.Reload() },
		Delete:         func() { ann.DeleteHovered() },
		ToggleLabel:    func() { ann.ToggleHovered() },
		ClearAll:       func() { ann.ClearAll() },
		ToggleMode:     func() { _ = c.ModePresenter.Toggle() },
		ToggleZoom:     func() { _ = ann.ToggleZoom() },
		ToggleResize:   ann.ToggleResize,
		ToggleNewLabel: ann.ToggleDefaultLabel,
		Goto:           ann.GotoText,
		SplitChanged:   func(s string) { _ = ann.SwitchSplit(s) },
		ConfigApplied:  a.applyConfig,
		Exit:           a.exitHandler,
	})
	c.ModePresenter.Sync()
	c.Loop = presenter.NewLoop(c.PredictionPresenter, ann, c.ReviewPresenter, c.StatePresenter, a.scheduleUpdate)

	a.checkDetector()
	if err := ann.Open(c.Config.Split); err != nil {
		a.logger.Error("open dataset", "root", c.Config.DatasetRoot, "split", c.Config.Split, "error", err)
	}

	a.scheduleUpdate()
	App.Wait()
}

// applyConfig pushes settings that can change at runtime. Detector URL and
// dataset root apply on the next start.
func (a *app) applyConfig(cfg *config.Config) {
	ann := a.container.AnnotatorPresenter
	ann.SetAutosave(cfg.AutosaveOnNavigate)
	ann.SetConfirmDeletes(cfg.ConfirmDeletes)
	if l, ok := annotation.ParseLabel(cfg.DefaultLabel); ok {
		ann.SetDefaultLabel(l)
	}
	if err := ann.SetConfidence(cfg.Confidence); err != nil {
		// the threshold in use did not change
		cfg.Confidence = ann.Settings().Confidence
	}
}

// checkDetector calls the detector health endpoint without blocking the UI.
func (a *app) checkDetector() {
	det := a.container.Detector
	if det == nil {
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("detector health panic", "error", r)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := det.CheckHealth(ctx); err != nil {
			a.logger.Warn("detector not reachable", "error", err)
			return
		}
		a.logger.Info("detector reachable")
	}()
}

func (a *app) update() {
	if a.closing {
		return
	}
	a.container.Loop.Tick()
}

func (a *app) exitHandler() {
	if a.closing {
		return
	}
	if err := a.container.AnnotatorPresenter.Settle(); err != nil {
		if errors.Is(err, presenter.ErrCancelled) {
			return
		}
		a.logger.Error("save on exit failed", "error", err)
	}
	a.closing = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	a.container.Close()
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the update on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}
