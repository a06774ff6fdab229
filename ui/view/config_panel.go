package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/fin-annotator-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the settings form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(parent *FrameWidget, startRow int) (endRow int)
	SetConfidenceEditable(enabled bool)
	SetConfidence(c float64)
	ApplyChanges() error
	Paths() []string
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	onApply  func(*config.Config)
	applyBtn *ButtonWidget
	confEdit bool
	widgets  map[string]*TextWidget // keyed by internal field id
}

// NewConfigPanel creates the view bound to cfg. onApply receives the
// validated config after it was saved.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger, onApply func(*config.Config)) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, onApply: onApply, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(parent *FrameWidget, startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := parent.Label(Txt(label), Anchor("w"))
		Grid(lbl, In(parent), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := parent.Text(Height(1), Width(24))
		Grid(w, In(parent), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("confidence", "Confidence (0-1)", fmt.Sprintf("%.2f", c.Confidence))
	makeRow("detectorURL", "Detector URL", c.DetectorURL)
	makeRow("datasetRoot", "Dataset Root", c.DatasetRoot)
	makeRow("autosave", "Autosave (true/false)", fmt.Sprintf("%t", c.AutosaveOnNavigate))
	makeRow("defaultLabel", "Default Label", c.DefaultLabel)
	makeRow("confirmDeletes", "Confirm Deletes (true/false)", fmt.Sprintf("%t", c.ConfirmDeletes))
	v.applyBtn = parent.Button(Txt("Apply Changes"), Command(func() { _ = v.ApplyChanges() }))
	Grid(v.applyBtn, In(parent), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetConfidenceEditable(enabled bool) {
	v.confEdit = enabled
	state := "disabled"
	if enabled {
		state = "normal"
	}
	if w := v.widgets["confidence"]; w != nil {
		w.Configure(State(state))
	}
}

// SetConfidence refreshes the confidence field after a change made elsewhere.
func (v *configPanel) SetConfidence(c float64) {
	w := v.widgets["confidence"]
	if w == nil {
		return
	}
	val := fmt.Sprintf("%.2f", c)
	if strings.TrimSpace(v.text(w)) == val {
		return
	}
	// a disabled text widget ignores edits
	w.Configure(State("normal"))
	w.Delete("1.0", END)
	w.Insert("1.0", val)
	if !v.confEdit {
		w.Configure(State("disabled"))
	}
}

// Paths lists the Tk paths of the editable fields, so key shortcuts can be
// suppressed while one of them has focus.
func (v *configPanel) Paths() []string {
	out := make([]string, 0, len(v.widgets))
	for _, w := range v.widgets {
		if w != nil {
			out = append(out, w.String())
		}
	}
	return out
}

func (v *configPanel) text(w *TextWidget) string {
	if w == nil {
		return ""
	}
	parts := w.Get("1.0", END)
	return strings.Join(parts, "")
}

func (v *configPanel) field(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	return strings.TrimSpace(v.text(w)), true
}

func (v *configPanel) ApplyChanges() error {
	if v.cfg == nil {
		return nil
	}
	cfg := *v.cfg // copy
	if s, ok := v.field("confidence"); ok {
		f, ok := parseFloatField(s)
		if !ok || f < 0 || f > 1 {
			err := fmt.Errorf("confidence %q must be a number between 0 and 1", s)
			if v.logger != nil {
				v.logger.Error("config invalid", "error", err)
			}
			return err
		}
		cfg.Confidence = f
	}
	if s, ok := v.field("detectorURL"); ok {
		cfg.DetectorURL = s
	}
	if s, ok := v.field("datasetRoot"); ok && s != "" {
		cfg.DatasetRoot = s
	}
	if s, ok := v.field("autosave"); ok {
		if b, ok := parseBoolLoose(s); ok {
			cfg.AutosaveOnNavigate = b
		}
	}
	if s, ok := v.field("confirmDeletes"); ok {
		if b, ok := parseBoolLoose(s); ok {
			cfg.ConfirmDeletes = b
		}
	}
	if s, ok := v.field("defaultLabel"); ok && s != "" {
		cfg.DefaultLabel = s
	}
	if err := cfg.Validate(); err != nil {
		if v.logger != nil {
			v.logger.Error("config invalid", "error", err)
		}
		return err
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	if v.onApply != nil {
		v.onApply(v.cfg)
	}
	return nil
}

func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
