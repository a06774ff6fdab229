package presenter

// ModeState provides access to the prediction/dataset mode flag.
type ModeState interface {
	Predicting() bool
	SetPredicting(bool) bool
	Name() string
}

// Canceller aborts outstanding detector work.
type Canceller interface{ Cancel() }

// ModeReloader settles pending edits before a mode change and re-populates
// the image on screen after it.
type ModeReloader interface {
	SettleForMode() error
	ReloadForMode() error
}

// ModeView updates UI elements affected by the mode switch.
type ModeView interface {
	SetModeLabel(text string)
	SetConfidenceEditable(bool)
}

// ModePresenter switches between dataset labels and detector predictions.
type ModePresenter struct {
	mode     ModeState
	worker   Canceller
	reloader ModeReloader
	view     ModeView
}

func NewModePresenter(mode ModeState, worker Canceller, reloader ModeReloader, view ModeView) *ModePresenter {
	return &ModePresenter{mode: mode, worker: worker, reloader: reloader, view: view}
}

func (m *ModePresenter) ready() bool {
	return m != nil && m.mode != nil && m.reloader != nil && m.view != nil
}

// Enable turns prediction mode on. Idempotent. When pending edits cannot be
// settled the mode stays unchanged.
func (m *ModePresenter) Enable() error {
	if !m.ready() || m.mode.Predicting() {
		return nil
	}
	if err := m.reloader.SettleForMode(); err != nil {
		return err
	}
	m.mode.SetPredicting(true)
	m.view.SetModeLabel("Mode: " + m.mode.Name())
	m.view.SetConfidenceEditable(true)
	return m.reloader.ReloadForMode()
}

// Disable returns to dataset labels and aborts running inference. Idempotent.
func (m *ModePresenter) Disable() error {
	if !m.ready() || !m.mode.Predicting() {
		return nil
	}
	if err := m.reloader.SettleForMode(); err != nil {
		return err
	}
	if m.worker != nil {
		m.worker.Cancel()
	}
	m.mode.SetPredicting(false)
	m.view.SetModeLabel("Mode: " + m.mode.Name())
	m.view.SetConfidenceEditable(false)
	return m.reloader.ReloadForMode()
}

// Toggle flips the mode delegating to Enable/Disable.
func (m *ModePresenter) Toggle() error {
	if !m.ready() {
		return nil
	}
	if m.mode.Predicting() {
		return m.Disable()
	}
	return m.Enable()
}

// Sync pushes the current mode to the view without reloading.
func (m *ModePresenter) Sync() {
	if !m.ready() {
		return
	}
	m.view.SetModeLabel("Mode: " + m.mode.Name())
	m.view.SetConfidenceEditable(m.mode.Predicting())
}
