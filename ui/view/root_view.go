package view

import (
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"time"

	"github.com/soocke/fin-annotator-go/config"
	"github.com/soocke/fin-annotator-go/domain/dataset"
	"github.com/soocke/fin-annotator-go/ui/presenter"
	"github.com/soocke/fin-annotator-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions the root view forwards to presenters.
type Handlers struct {
	Pointer PointerHandlers

	Next, Previous, Save, Reload  func()
	Delete, ToggleLabel, ClearAll func()
	ToggleMode, ToggleZoom        func()
	ToggleResize, ToggleNewLabel  func()
	Goto                          func(text string) error
	SplitChanged                  func(split string)
	ConfigApplied                 func(cfg *config.Config)
	Exit                          func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It implements the view contracts of the presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Canvas      CanvasView
	Review      ReviewStats
	ConfigPanel ConfigPanel
	GotoDlg     GotoDialog

	// Widgets
	ProgressLabel *LabelWidget
	BoxesLabel    *LabelWidget
	SavedLabel    *LabelWidget
	StateLabel    *TLabelWidget
	ModeLabel     *LabelWidget
	SettingsLabel *LabelWidget
	StatusLabel   *LabelWidget
	ErrorLabel    *TLabelWidget
	SplitSelect   *TComboboxWidget

	total    int
	textOnly map[string]bool
}

var (
	_ presenter.AnnotatorView = (*RootView)(nil)
	_ presenter.ModeView      = (*RootView)(nil)
	_ presenter.ReviewView    = (*RootView)(nil)
	_ presenter.StateView     = (*RootView)(nil)
)

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger, textOnly: map[string]bool{}}
}

// Build constructs the layout: the canvas on the left, the sidebar on the right.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	canvasFrame := Frame()
	Grid(canvasFrame, Row(0), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	side := Frame()
	Grid(side, Row(0), Column(1), Sticky("ne"), Padx("0.4m"), Pady("0.4m"))

	row := 0
	next := func() int { row++; return row - 1 }

	rv.ProgressLabel = side.Label(Txt("No image"), Anchor("w"))
	Grid(rv.ProgressLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
	rv.BoxesLabel = side.Label(Txt("Boxes: 0"), Anchor("w"))
	Grid(rv.BoxesLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
	rv.SavedLabel = side.Label(Txt(""), Anchor("w"))
	Grid(rv.SavedLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
	rv.StateLabel = side.TLabel(Txt("State: <no image>"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.3m"))
	rv.ModeLabel = side.Label(Txt("Mode: "+rv.cfg.Mode), Anchor("w"))
	Grid(rv.ModeLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
	rv.SettingsLabel = side.Label(Txt(""), Anchor("w"))
	Grid(rv.SettingsLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))

	splits := make([]string, 0, len(dataset.Splits))
	current := 0
	for i, s := range dataset.Splits {
		splits = append(splits, string(s))
		if string(s) == rv.cfg.Split {
			current = i
		}
	}
	rv.SplitSelect = side.TCombobox(Values(splits), Width(12))
	Grid(rv.SplitSelect, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.SplitSelect.Current(current)
	Bind(rv.SplitSelect, "<<ComboboxSelected>>", Command(func() {
		idx, err := strconv.Atoi(rv.SplitSelect.Current(nil))
		if err != nil || idx < 0 || idx >= len(splits) {
			if rv.logger != nil {
				rv.logger.Error("split selection parse error", "error", err)
			}
			return
		}
		call1(h.SplitChanged, splits[idx])
	}))

	btnFrame := side.Frame()
	Grid(btnFrame, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Pady("0.3m"))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"< Prev [Left]", "", h.Previous},
		{"Next > [Right]", "", h.Next},
		{"Save [Ctrl+S]", theme.StylePrimaryButton, h.Save},
		{"Reload [Q]", "", h.Reload},
		{"Delete [D]", theme.StyleDangerButton, h.Delete},
		{"Toggle Label [W]", "", h.ToggleLabel},
		{"Clear All", theme.StyleDangerButton, h.ClearAll},
		{"Go to... [Ctrl+G]", "", rv.openGoto},
		{"Mode [Tab]", "", h.ToggleMode},
		{"Zoom [Z]", "", h.ToggleZoom},
		{"Resize [R]", "", h.ToggleResize},
		{"New Label", "", h.ToggleNewLabel},
		{"Dark Mode", "", func() { theme.ToggleDark() }},
		{"Exit", "", h.Exit},
	}
	for i, b := range buttons {
		fn := b.fn
		btn := btnFrame.TButton(Txt(b.text), Command(func() { call0(fn) }))
		if b.style != "" {
			btn.Configure(Style(b.style))
		}
		Grid(btn, In(btnFrame), Row(i/2), Column(i%2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	cfgFrame := side.Frame()
	Grid(cfgFrame, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Pady("0.3m"))
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger, func(c *config.Config) {
		if h.ConfigApplied != nil {
			h.ConfigApplied(c)
		}
	})
	rv.ConfigPanel.Build(cfgFrame, 0)
	for _, p := range rv.ConfigPanel.Paths() {
		rv.textOnly[p] = true
	}

	legend := side.Frame()
	Grid(legend, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Pady("0.3m"))
	for i, l := range []struct{ text, style string }{
		{"■ good fin", theme.StyleGoodLegend},
		{"■ bad fin", theme.StyleBadLegend},
		{"□ drawing", theme.StyleDrawLegend},
	} {
		lbl := legend.TLabel(Txt(l.text), Style(l.style))
		Grid(lbl, In(legend), Row(0), Column(i), Sticky("w"), Padx("0.4m"))
	}

	previewFrame := side.Frame()
	Grid(previewFrame, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"))
	rv.Canvas = NewCanvasView(canvasFrame, previewFrame, h.Pointer)

	statsFrame := side.Frame()
	Grid(statsFrame, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"))
	rv.Review = NewReviewStats(statsFrame, 0)

	rv.StatusLabel = side.Label(Txt(""), Anchor("w"), Width(40))
	Grid(rv.StatusLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))
	rv.ErrorLabel = side.TLabel(Txt(""), Style(theme.StyleErrorLabel), Width(40))
	Grid(rv.ErrorLabel, In(side), Row(next()), Column(0), Columnspan(2), Sticky("we"), Padx("0.2m"))

	rv.GotoDlg = NewGotoDialog(h.Goto)

	rv.bindKeys(h)
}

func (rv *RootView) bindKeys(h Handlers) {
	keys := []struct {
		seqs []string
		fn   func()
	}{
		{[]string{"<Control-s>", "<Control-S>"}, h.Save},
		{[]string{"<KeyPress-d>", "<KeyPress-D>"}, h.Delete},
		{[]string{"<KeyPress-w>", "<KeyPress-W>"}, h.ToggleLabel},
		{[]string{"<Right>"}, h.Next},
		{[]string{"<Left>"}, h.Previous},
		{[]string{"<KeyPress-r>", "<KeyPress-R>"}, h.ToggleResize},
		{[]string{"<Tab>"}, h.ToggleMode},
		{[]string{"<KeyPress-z>", "<KeyPress-Z>"}, h.ToggleZoom},
		{[]string{"<KeyPress-q>", "<KeyPress-Q>"}, h.Reload},
		{[]string{"<Control-g>"}, rv.openGoto},
	}
	for _, k := range keys {
		fn := k.fn
		for _, seq := range k.seqs {
			Bind(App, seq, Command(func() {
				if rv.typing() {
					return
				}
				call0(fn)
			}))
		}
	}
}

// typing reports whether a config field has keyboard focus.
func (rv *RootView) typing() bool {
	return rv.textOnly[Focus()]
}

func (rv *RootView) openGoto() {
	if rv.GotoDlg != nil {
		rv.GotoDlg.OpenOrFocus(rv.total)
	}
}

func call0(fn func()) {
	if fn != nil {
		fn()
	}
}

func call1(fn func(string), s string) {
	if fn != nil {
		fn(s)
	}
}

// --- AnnotatorView ---

func (rv *RootView) ShowCanvas(img image.Image) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.ShowCanvas(img)
	}
}

func (rv *RootView) SetHoverPreview(img image.Image) {
	if rv != nil && rv.Canvas != nil {
		rv.Canvas.SetHoverPreview(img)
	}
}

func (rv *RootView) SetProgress(position, total int, name string) {
	if rv == nil || rv.ProgressLabel == nil {
		return
	}
	rv.total = total
	rv.ProgressLabel.Configure(Txt(fmt.Sprintf("Image %d / %d: %s", position, total, name)))
	App.WmTitle(fmt.Sprintf("Fin Annotator - %s (%d/%d)", name, position, total))
}

func (rv *RootView) SetBoxCount(n int, modified bool) {
	if rv == nil || rv.BoxesLabel == nil {
		return
	}
	text := fmt.Sprintf("Boxes: %d", n)
	if modified {
		text += " (unsaved)"
	}
	rv.BoxesLabel.Configure(Txt(text))
}

func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetError(text string) {
	if rv != nil && rv.ErrorLabel != nil {
		rv.ErrorLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetSettings(s presenter.Settings) {
	if rv == nil || rv.SettingsLabel == nil {
		return
	}
	resize := "off"
	if s.ResizeEnabled {
		resize = "on"
	}
	rv.SettingsLabel.Configure(Txt(fmt.Sprintf("Zoom %dx | Resize %s | New: %s", s.Zoom, resize, s.DefaultLabel)))
	if rv.ConfigPanel != nil {
		rv.ConfigPanel.SetConfidence(s.Confidence)
	}
	// a rejected split switch puts the selector back
	if rv.SplitSelect != nil {
		for i, sp := range dataset.Splits {
			if string(sp) == s.Split {
				rv.SplitSelect.Current(i)
				break
			}
		}
	}
}

func (rv *RootView) SetSavedCount(saved, total int) {
	if rv != nil && rv.SavedLabel != nil {
		rv.SavedLabel.Configure(Txt(fmt.Sprintf("Saved: %d of %d in split", saved, total)))
	}
}

func (rv *RootView) Confirm(title, message string) bool {
	return MessageBox(Title(title), Msg(message), Icon("question"), Type("yesno")) == "yes"
}

func (rv *RootView) AskSave(action string) presenter.SaveChoice {
	reply := MessageBox(
		Title("Unsaved Changes"),
		Msg(fmt.Sprintf("Do you want to save changes before %s?", action)),
		Icon("question"),
		Type("yesnocancel"),
	)
	switch reply {
	case "yes":
		return presenter.SaveChanges
	case "no":
		return presenter.DiscardChanges
	default:
		return presenter.CancelAction
	}
}

// --- ModeView ---

func (rv *RootView) SetModeLabel(text string) {
	if rv != nil && rv.ModeLabel != nil {
		rv.ModeLabel.Configure(Txt(text))
	}
}

func (rv *RootView) SetConfidenceEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetConfidenceEditable(enabled)
	}
}

// --- ReviewView / StateView ---

func (rv *RootView) SetReview(image, total time.Duration, lastSaved time.Time) {
	if rv != nil && rv.Review != nil {
		rv.Review.SetReview(image, total, lastSaved)
	}
}

func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}
