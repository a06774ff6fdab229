package view

import (
	"fmt"
	"strings"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// GotoDialog asks for a 1-based image number.
type GotoDialog interface {
	OpenOrFocus(total int)
	Close()
}

type gotoDialog struct {
	onSubmit func(text string) error
	win      *ToplevelWidget
	input    *TextWidget
	errLbl   *LabelWidget
}

// NewGotoDialog creates a dialog manager. onSubmit receives the raw input;
// a non-nil error keeps the dialog open and is shown below the field.
func NewGotoDialog(onSubmit func(text string) error) GotoDialog {
	return &gotoDialog{onSubmit: onSubmit}
}

func (v *gotoDialog) OpenOrFocus(total int) {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle("Go to image")
	v.win = win
	WmAttributes(win.Window, "-topmost", 1)
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.Close)

	prompt := win.Label(Txt(fmt.Sprintf("Image number (1-%d):", total)), Anchor("w"))
	Grid(prompt, Row(0), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	v.input = win.Text(Height(1), Width(10))
	Grid(v.input, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.errLbl = win.Label(Txt(""), Anchor("w"))
	Grid(v.errLbl, Row(2), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"))
	goBtn := win.Button(Txt("Go [Enter]"), Command(v.submit))
	Grid(goBtn, Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.Close))
	Grid(cancel, Row(3), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.submit))
	Bind(win, "<Escape>", Command(v.Close))
	Focus(v.input)
}

func (v *gotoDialog) submit() {
	if v.win == nil || v.input == nil {
		return
	}
	text := strings.TrimSpace(strings.Join(v.input.Get("1.0", END), ""))
	if v.onSubmit != nil {
		if err := v.onSubmit(text); err != nil {
			v.errLbl.Configure(Txt(err.Error()))
			return
		}
	}
	v.Close()
}

func (v *gotoDialog) Close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
		v.input = nil
		v.errLbl = nil
	}
}
