package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/fin-annotator-go/config"
	"github.com/soocke/fin-annotator-go/domain/annotation"
	"github.com/soocke/fin-annotator-go/domain/dataset"
	"github.com/soocke/fin-annotator-go/domain/detect"
	"github.com/soocke/fin-annotator-go/ui/images"
	"github.com/soocke/fin-annotator-go/ui/model"
)

var (
	ErrNoSession     = errors.New("no image loaded")
	ErrInvalidNumber = errors.New("please enter a valid number")
	ErrConfidence    = errors.New("confidence must be between 0 and 1")
	ErrCancelled     = errors.New("cancelled by user")
)

// SaveChoice is the answer to the unsaved changes prompt.
type SaveChoice int

const (
	SaveChanges SaveChoice = iota
	DiscardChanges
	CancelAction
)

const hoverPreviewSize = 160

// ImageSource decodes dataset images.
type ImageSource interface {
	Load(path string) (image.Image, error)
	Prefetch(path string)
	Forget(path string)
}

// LabelRepository lists split images and persists their label files.
type LabelRepository interface {
	ListImages(split dataset.Split) ([]string, error)
	LoadLabels(imagePath string, imageW, imageH int) ([]annotation.Annotation, error)
	SaveLabels(imagePath string, items []annotation.Annotation, imageW, imageH int) error
}

// ProgressRecorder remembers positions and save history. Optional.
type ProgressRecorder interface {
	LastIndex(ctx context.Context, dataset, split string) (int, bool, error)
	SetLastIndex(ctx context.Context, dataset, split string, idx int) error
	RecordSave(ctx context.Context, imagePath string, boxes int, at time.Time) error
	LastSaved(ctx context.Context, imagePath string) (time.Time, bool, error)
	SavedImages(ctx context.Context, prefix string) (int, error)
}

// PredictionRequester schedules detector runs for a session.
type PredictionRequester interface {
	Available() bool
	Request(id uuid.UUID, path string, size image.Point, confidence float64) error
	Cancel()
}

// Settings is the snapshot of canvas and mode settings shown in the sidebar.
type Settings struct {
	Zoom           int
	ResizeEnabled  bool
	DefaultLabel   annotation.Label
	Mode           string
	Confidence     float64
	Split          string
	Autosave       bool
	ConfirmDeletes bool
}

// AnnotatorView is the UI surface driven by the annotator presenter.
type AnnotatorView interface {
	ShowCanvas(img image.Image)
	SetProgress(position, total int, name string)
	SetBoxCount(n int, modified bool)
	SetStatus(text string)
	SetError(text string)
	SetHoverPreview(img image.Image)
	SetSettings(s Settings)
	SetSavedCount(saved, total int)
	// Confirm asks a yes/no question.
	Confirm(title, message string) bool
	// AskSave asks what to do with unsaved changes before action.
	AskSave(action string) SaveChoice
}

// AnnotatorPresenter owns the command surface of the annotation window:
// pointer input, box commands, settings, saving and navigation.
// All methods must be called from the UI thread.
type AnnotatorPresenter struct {
	cfg       *config.Config
	repo      LabelRepository
	images    ImageSource
	progress  ProgressRecorder
	predictor PredictionRequester
	sessions  *model.SessionModel
	nav       *model.NavigationModel
	mode      *model.ModeModel
	timer     *model.ReviewTimer
	view      AnnotatorView
	renderer  *images.OverlayRenderer
	logger    *slog.Logger
	now       func() time.Time

	zoom         int
	resize       bool
	defaultLabel annotation.Label
	confidence   float64
	autosave     bool
	confirmDel   bool

	dirty     bool
	discarded string
	hovered   int
	lastSaved time.Time
}

// AnnotatorDeps bundles the collaborators of NewAnnotatorPresenter.
type AnnotatorDeps struct {
	Repo      LabelRepository
	Images    ImageSource
	Progress  ProgressRecorder
	Predictor PredictionRequester
	Sessions  *model.SessionModel
	Nav       *model.NavigationModel
	Mode      *model.ModeModel
	Timer     *model.ReviewTimer
	View      AnnotatorView
}

// NewAnnotatorPresenter constructs the presenter with settings taken from cfg.
func NewAnnotatorPresenter(cfg *config.Config, deps AnnotatorDeps, logger *slog.Logger) *AnnotatorPresenter {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	p := &AnnotatorPresenter{
		cfg:        cfg,
		repo:       deps.Repo,
		images:     deps.Images,
		progress:   deps.Progress,
		predictor:  deps.Predictor,
		sessions:   deps.Sessions,
		nav:        deps.Nav,
		mode:       deps.Mode,
		timer:      deps.Timer,
		view:       deps.View,
		renderer:   images.NewOverlayRenderer(),
		logger:     logger,
		now:        time.Now,
		zoom:       cfg.Zoom,
		resize:     cfg.ResizeEnabled,
		confidence: cfg.Confidence,
		autosave:   cfg.AutosaveOnNavigate,
		confirmDel: cfg.ConfirmDeletes,
		hovered:    -1,
	}
	if p.sessions == nil {
		p.sessions = model.NewSessionModel()
	}
	if p.nav == nil {
		p.nav = model.NewNavigationModel()
	}
	if p.mode == nil {
		p.mode = &model.ModeModel{}
	}
	if p.timer == nil {
		p.timer = model.NewReviewTimer()
	}
	if l, ok := annotation.ParseLabel(cfg.DefaultLabel); ok {
		p.defaultLabel = l
	}
	p.mode.SetPredicting(cfg.Mode == config.ModePredict)
	return p
}

// Session returns the session on screen, or nil.
func (p *AnnotatorPresenter) Session() *annotation.Session { return p.sessions.Current() }

// Settings returns the current settings snapshot.
func (p *AnnotatorPresenter) Settings() Settings {
	return Settings{
		Zoom:           p.zoom,
		ResizeEnabled:  p.resize,
		DefaultLabel:   p.defaultLabel,
		Mode:           p.mode.Name(),
		Confidence:     p.confidence,
		Split:          p.nav.Split(),
		Autosave:       p.autosave,
		ConfirmDeletes: p.confirmDel,
	}
}

// CurrentState reports the editor gesture state of the active session.
func (p *AnnotatorPresenter) CurrentState() (annotation.State, bool) {
	s := p.sessions.Current()
	if s == nil {
		return annotation.StateIdle, false
	}
	return s.Editor.State(), true
}

// Reviewing reports whether an image is on screen.
func (p *AnnotatorPresenter) Reviewing() bool { return p.sessions.Current() != nil }

// LastSaved returns when the current image was last saved.
func (p *AnnotatorPresenter) LastSaved() time.Time { return p.lastSaved }

// --- dataset & navigation ---

// Open lists the images of split and shows the remembered or first image.
func (p *AnnotatorPresenter) Open(split string) error {
	s, err := dataset.ParseSplit(split)
	if err != nil {
		p.report("open split", err)
		return err
	}
	paths, err := p.repo.ListImages(s)
	if err != nil {
		p.report("open split", err)
		return err
	}
	if p.logger != nil {
		p.logger.Info("split opened", "split", string(s), "images", len(paths))
	}
	return p.showSplit(string(s), paths)
}

// SwitchSplit saves pending work and opens another split. On failure the
// current split stays open.
func (p *AnnotatorPresenter) SwitchSplit(split string) error {
	s, err := dataset.ParseSplit(split)
	if err != nil {
		p.report("switch split", err)
		return err
	}
	if string(s) == p.nav.Split() && p.nav.Len() > 0 {
		return nil
	}
	if err := p.settlePending("switching splits"); err != nil {
		p.pushSettings()
		return err
	}
	paths, err := p.repo.ListImages(s)
	if err != nil {
		p.report("switch split", err)
		p.pushSettings()
		return err
	}
	return p.showSplit(string(s), paths)
}

// showSplit installs paths and loads the remembered image. When that image
// cannot be shown while another one is on screen, the previous list and
// cursor come back so sidebar and navigation keep matching the canvas.
func (p *AnnotatorPresenter) showSplit(split string, paths []string) error {
	prev := p.nav.Snapshot()
	p.nav.SetImages(split, paths, p.restoreIndex(split))
	err := p.loadAt(p.nav.Index())
	if err != nil && p.sessions.Current() != nil {
		p.nav.Restore(prev)
	}
	p.pushSettings()
	return err
}

// Next moves to the following image, wrapping to the first.
func (p *AnnotatorPresenter) Next() error { return p.step(1) }

// Previous moves to the preceding image, wrapping to the last.
func (p *AnnotatorPresenter) Previous() error { return p.step(-1) }

func (p *AnnotatorPresenter) step(delta int) error {
	i, err := p.nav.Offset(delta)
	if err != nil {
		p.report("navigate", err)
		return err
	}
	return p.navigate(i, "leaving this image")
}

// Goto jumps to a 1-based image number.
func (p *AnnotatorPresenter) Goto(number int) error {
	i, err := p.nav.Resolve(number)
	if err != nil {
		p.report("go to image", err)
		return err
	}
	return p.navigate(i, "leaving this image")
}

// GotoText parses user input and jumps to it.
func (p *AnnotatorPresenter) GotoText(text string) error {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		p.report("go to image", ErrInvalidNumber)
		return ErrInvalidNumber
	}
	return p.Goto(n)
}

// Reload discards unsaved edits and shows the current image afresh.
func (p *AnnotatorPresenter) Reload() error {
	if p.nav.Len() == 0 {
		return ErrNoSession
	}
	if s := p.sessions.Current(); s != nil && s.Modified() && p.logger != nil {
		p.logger.Warn("reload discards unsaved changes", "image", filepath.Base(s.ImagePath))
	}
	// the file may have changed on disk
	if path, ok := p.nav.Current(); ok {
		p.images.Forget(path)
	}
	return p.loadAt(p.nav.Index())
}

// SettleForMode applies the save policy before the mode flips. An error
// means the mode must stay as it is.
func (p *AnnotatorPresenter) SettleForMode() error { return p.settlePending("switching modes") }

// ReloadForMode re-populates the current image for the active mode. Pending
// edits must already be settled.
func (p *AnnotatorPresenter) ReloadForMode() error {
	p.pushSettings()
	if p.nav.Len() == 0 {
		return nil
	}
	return p.loadAt(p.nav.Index())
}

// Settle applies the save policy to pending edits. Used on exit.
func (p *AnnotatorPresenter) Settle() error { return p.settlePending("exiting") }

func (p *AnnotatorPresenter) navigate(i int, action string) error {
	if err := p.settlePending(action); err != nil {
		return err
	}
	return p.loadAt(i)
}

// settlePending applies the save policy to the current session. With
// autosave on it saves; otherwise the user picks save, discard or cancel.
// A failed save or a cancel aborts the action so no work is lost.
func (p *AnnotatorPresenter) settlePending(action string) error {
	s := p.sessions.Current()
	if s == nil || !s.Modified() {
		return nil
	}
	if p.autosave {
		return p.Save()
	}
	switch p.view.AskSave(action) {
	case SaveChanges:
		return p.Save()
	case DiscardChanges:
		name := filepath.Base(s.ImagePath)
		if p.logger != nil {
			p.logger.Warn("unsaved changes discarded", "image", name, "boxes", s.Editor.Len())
		}
		p.discarded = name
		return nil
	default:
		p.view.SetStatus("Cancelled")
		return ErrCancelled
	}
}

func (p *AnnotatorPresenter) loadAt(i int) error {
	path, ok := p.nav.PathAt(i)
	if !ok {
		p.report("load image", model.ErrNoImages)
		return model.ErrNoImages
	}
	img, err := p.images.Load(path)
	if err != nil {
		p.discarded = ""
		p.report("failed to load image", err)
		return err
	}
	sess, err := annotation.NewSession(path, img, annotation.SessionOptions{
		Zoom:          p.zoom,
		ResizeEnabled: p.resize,
		DefaultLabel:  p.defaultLabel,
		Logger:        p.logger,
	})
	if err != nil {
		p.discarded = ""
		p.report("failed to load image", err)
		return err
	}
	if p.predictor != nil {
		p.predictor.Cancel()
	}
	p.nav.Move(i)
	p.sessions.Replace(sess)
	p.hovered = -1
	p.timer.NextImage(p.now())
	p.view.SetHoverPreview(nil)
	p.view.SetError("")
	p.populate(sess)
	p.afterLoad(sess)
	return nil
}

func (p *AnnotatorPresenter) populate(sess *annotation.Session) {
	w, h := sess.Size()
	if p.mode.Predicting() {
		if p.predictor == nil || !p.predictor.Available() {
			p.report("prediction", detect.ErrNoDetector)
			return
		}
		if err := p.predictor.Request(sess.ID, sess.ImagePath, image.Pt(w, h), p.confidence); err != nil {
			p.report("prediction", err)
			return
		}
		p.view.SetStatus("Predicting...")
		return
	}
	items, err := p.repo.LoadLabels(sess.ImagePath, w, h)
	if err != nil {
		p.report("failed to load labels", err)
		return
	}
	sess.Editor.Replace(items)
	p.view.SetStatus(fmt.Sprintf("Loaded %d boxes", len(items)))
}

func (p *AnnotatorPresenter) afterLoad(sess *annotation.Session) {
	pos, total := p.nav.Position()
	p.view.SetProgress(pos, total, p.nav.Name())
	p.view.SetBoxCount(sess.Editor.Len(), sess.Modified())
	p.dirty = true
	if p.discarded != "" {
		p.view.SetStatus(fmt.Sprintf("Discarded unsaved changes to %s", p.discarded))
		p.discarded = ""
	}

	p.lastSaved = time.Time{}
	ctx := context.Background()
	if p.progress != nil {
		if at, ok, err := p.progress.LastSaved(ctx, sess.ImagePath); err == nil && ok {
			p.lastSaved = at
		}
		if err := p.progress.SetLastIndex(ctx, p.cfg.DatasetRoot, p.nav.Split(), p.nav.Index()); err != nil && p.logger != nil {
			p.logger.Error("store position", "error", err)
		}
	}
	p.refreshSaved(sess.ImagePath)
	if next, err := p.nav.Offset(1); err == nil && next != p.nav.Index() {
		if path, ok := p.nav.PathAt(next); ok {
			go func() {
				defer recoverLog(p.logger, "prefetch panic")
				p.images.Prefetch(path)
			}()
		}
	}
	if p.logger != nil {
		w, h := sess.Size()
		p.logger.Info("image loaded", "image", p.nav.Name(), "index", pos, "of", total, "w", w, "h", h, "mode", p.mode.Name())
	}
}

func (p *AnnotatorPresenter) restoreIndex(split string) int {
	if p.progress == nil {
		return 0
	}
	idx, ok, err := p.progress.LastIndex(context.Background(), p.cfg.DatasetRoot, split)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("restore position", "error", err)
		}
		return 0
	}
	if !ok {
		return 0
	}
	return idx
}

// --- persistence ---

// Save writes the label file of the current image. On failure the session
// stays modified.
func (p *AnnotatorPresenter) Save() error {
	s := p.sessions.Current()
	if s == nil {
		p.report("save", ErrNoSession)
		return ErrNoSession
	}
	w, h := s.Size()
	items := s.Editor.Items()
	if err := p.repo.SaveLabels(s.ImagePath, items, w, h); err != nil {
		p.report("failed to save annotations", err)
		return err
	}
	s.MarkSaved()
	p.lastSaved = p.now()
	if p.progress != nil {
		if err := p.progress.RecordSave(context.Background(), s.ImagePath, len(items), p.lastSaved); err != nil && p.logger != nil {
			p.logger.Error("record save", "error", err)
		}
	}
	p.refreshSaved(s.ImagePath)
	p.view.SetBoxCount(len(items), false)
	p.view.SetStatus(fmt.Sprintf("Saved %d boxes to %s", len(items), filepath.Base(dataset.LabelPath(s.ImagePath))))
	if p.logger != nil {
		p.logger.Info("annotations saved", "image", filepath.Base(s.ImagePath), "boxes", len(items))
	}
	return nil
}

// refreshSaved shows how many images of the open split have a recorded save.
func (p *AnnotatorPresenter) refreshSaved(imagePath string) {
	if p.progress == nil {
		return
	}
	prefix := filepath.Dir(imagePath) + string(filepath.Separator)
	n, err := p.progress.SavedImages(context.Background(), prefix)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("count saved images", "error", err)
		}
		return
	}
	p.view.SetSavedCount(n, p.nav.Len())
}

// --- predictions ---

// OnPrediction applies a detector result to the session it was requested for.
// An untouched session takes the detections as its set; an edited one gets
// them appended.
func (p *AnnotatorPresenter) OnPrediction(res PredictionResult) {
	s := p.sessions.Current()
	if s == nil || s.ID != res.SessionID {
		if p.logger != nil {
			p.logger.Debug("prediction for inactive session ignored", "session", res.SessionID.String())
		}
		return
	}
	if res.Err != nil {
		if errors.Is(res.Err, context.Canceled) {
			return
		}
		p.report("prediction failed", res.Err)
		return
	}
	if s.Modified() {
		s.Editor.Append(res.Items)
	} else {
		s.Editor.Replace(res.Items)
	}
	p.view.SetBoxCount(s.Editor.Len(), s.Modified())
	p.view.SetStatus(fmt.Sprintf("%d detections (%s)", len(res.Items), res.Duration.Round(time.Millisecond)))
	p.dirty = true
}

// --- pointer input ---

// PointerDown forwards a primary button press in canvas coordinates.
func (p *AnnotatorPresenter) PointerDown(x, y int) {
	s := p.sessions.Current()
	if s == nil {
		return
	}
	s.Editor.OnPointerDown(image.Pt(x, y))
	p.dirty = true
}

// PointerMove forwards pointer motion in canvas coordinates.
func (p *AnnotatorPresenter) PointerMove(x, y int) {
	s := p.sessions.Current()
	if s == nil {
		return
	}
	if s.Editor.OnPointerMove(image.Pt(x, y)) {
		p.dirty = true
	}
	p.syncHover(s)
}

// PointerUp ends the gesture.
func (p *AnnotatorPresenter) PointerUp(x, y int) {
	s := p.sessions.Current()
	if s == nil {
		return
	}
	s.Editor.OnPointerMove(image.Pt(x, y))
	if s.Editor.OnPointerUp() {
		p.view.SetStatus("Box added")
	}
	p.view.SetBoxCount(s.Editor.Len(), s.Modified())
	p.dirty = true
	p.syncHover(s)
}

func (p *AnnotatorPresenter) syncHover(s *annotation.Session) {
	h := s.Editor.Hovered()
	if h == p.hovered {
		return
	}
	p.hovered = h
	a, ok := s.Editor.At(h)
	if !ok {
		p.view.SetHoverPreview(nil)
		return
	}
	roi, _, err := images.ExtractROI(s.Image, a.Box.Rect(), 8)
	if err != nil {
		p.view.SetHoverPreview(nil)
		return
	}
	p.view.SetHoverPreview(images.ScaleToFit(roi, hoverPreviewSize, hoverPreviewSize))
}

// --- box commands ---

// DeleteHovered removes the box under the pointer, asking first when
// delete confirmation is on.
func (p *AnnotatorPresenter) DeleteHovered() bool {
	s := p.sessions.Current()
	if s == nil || s.Editor.Hovered() < 0 {
		return false
	}
	if !p.confirm("Delete Box", "Do you want to delete this box?") {
		return false
	}
	return p.editorCommand("Box deleted", func(e *annotation.Editor) bool { return e.DeleteHovered() })
}

// ToggleHovered flips the label of the box under the pointer.
func (p *AnnotatorPresenter) ToggleHovered() bool {
	return p.editorCommand("Label toggled", func(e *annotation.Editor) bool { return e.ToggleHovered() })
}

// ClearAll removes every box of the current image, asking first when
// delete confirmation is on.
func (p *AnnotatorPresenter) ClearAll() bool {
	s := p.sessions.Current()
	if s == nil || s.Editor.Len() == 0 {
		return false
	}
	if !p.confirm("Clear Annotations", "Do you want to remove all annotations from this image?") {
		return false
	}
	return p.editorCommand("All boxes cleared", func(e *annotation.Editor) bool { return e.Clear() })
}

func (p *AnnotatorPresenter) confirm(title, message string) bool {
	if !p.confirmDel {
		return true
	}
	return p.view.Confirm(title, message)
}

func (p *AnnotatorPresenter) editorCommand(status string, fn func(e *annotation.Editor) bool) bool {
	s := p.sessions.Current()
	if s == nil || !fn(s.Editor) {
		return false
	}
	p.view.SetBoxCount(s.Editor.Len(), s.Modified())
	p.view.SetStatus(status)
	p.syncHover(s)
	p.dirty = true
	return true
}

// --- settings ---

// SetZoom switches between 1x and 2x.
func (p *AnnotatorPresenter) SetZoom(level int) error {
	if s := p.sessions.Current(); s != nil {
		changed, err := s.Editor.SetZoom(level)
		if err != nil {
			p.report("zoom", err)
			return err
		}
		if changed {
			p.dirty = true
		}
	} else if level != 1 && level != 2 {
		p.report("zoom", annotation.ErrInvalidZoom)
		return annotation.ErrInvalidZoom
	}
	p.zoom = level
	p.pushSettings()
	return nil
}

// ToggleZoom flips between 1x and 2x.
func (p *AnnotatorPresenter) ToggleZoom() error {
	if p.zoom == 2 {
		return p.SetZoom(1)
	}
	return p.SetZoom(2)
}

// ToggleResize turns corner handles on or off.
func (p *AnnotatorPresenter) ToggleResize() {
	p.resize = !p.resize
	if s := p.sessions.Current(); s != nil {
		s.Editor.SetResizeEnabled(p.resize)
		p.dirty = true
	}
	p.pushSettings()
}

// SetDefaultLabel selects the label for new boxes.
func (p *AnnotatorPresenter) SetDefaultLabel(l annotation.Label) {
	p.defaultLabel = l
	if s := p.sessions.Current(); s != nil {
		s.Editor.SetDefaultLabel(l)
	}
	p.pushSettings()
}

// ToggleDefaultLabel flips the label for new boxes.
func (p *AnnotatorPresenter) ToggleDefaultLabel() { p.SetDefaultLabel(p.defaultLabel.Toggle()) }

// SetConfidence changes the detector threshold and re-runs prediction in
// prediction mode.
func (p *AnnotatorPresenter) SetConfidence(c float64) error {
	if c < 0 || c > 1 {
		p.report("confidence", ErrConfidence)
		return ErrConfidence
	}
	if c == p.confidence {
		return nil
	}
	rerun := p.mode.Predicting() && p.nav.Len() > 0
	if rerun {
		if err := p.settlePending("changing the confidence"); err != nil {
			p.pushSettings()
			return err
		}
	}
	p.confidence = c
	p.pushSettings()
	if rerun {
		return p.loadAt(p.nav.Index())
	}
	return nil
}

// SetAutosave changes the navigation save policy.
func (p *AnnotatorPresenter) SetAutosave(on bool) {
	p.autosave = on
	p.pushSettings()
}

// SetConfirmDeletes turns the delete and clear prompts on or off.
func (p *AnnotatorPresenter) SetConfirmDeletes(on bool) {
	p.confirmDel = on
	p.pushSettings()
}

func (p *AnnotatorPresenter) pushSettings() { p.view.SetSettings(p.Settings()) }

// --- rendering ---

// Flush re-renders the canvas if anything changed since the last call.
func (p *AnnotatorPresenter) Flush() {
	if !p.dirty {
		return
	}
	p.dirty = false
	s := p.sessions.Current()
	if s == nil {
		return
	}
	p.view.ShowCanvas(p.renderer.Render(s.Image, s.Editor))
}

func (p *AnnotatorPresenter) report(what string, err error) {
	if p.logger != nil {
		p.logger.Error(what, "error", err)
	}
	p.view.SetError(fmt.Sprintf("%s: %v", what, err))
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
