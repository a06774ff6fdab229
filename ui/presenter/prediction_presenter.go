package presenter

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/fin-annotator-go/domain/annotation"
	"github.com/soocke/fin-annotator-go/domain/detect"
)

// PredictionResult is delivered on the UI thread for one inference request.
type PredictionResult struct {
	SessionID uuid.UUID
	Items     []annotation.Annotation
	Err       error
	Duration  time.Duration
}

type predictionTask struct {
	ctx        context.Context
	sessionID  uuid.UUID
	path       string
	size       image.Point
	confidence float64
}

// PredictionPresenter runs the detector off the UI thread. At most one task
// is queued and one result buffered; newer work replaces older work. Every
// request carries the session ID so results for a session that is no longer
// on screen are dropped.
type PredictionPresenter struct {
	detector detect.Detector
	logger   *slog.Logger
	OnResult func(PredictionResult)

	workerOnce sync.Once
	closeOnce  sync.Once
	workCh     chan predictionTask
	resultCh   chan PredictionResult
	base       context.Context
	stop       context.CancelFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	latest uuid.UUID
}

// NewPredictionPresenter constructs the presenter. A nil detector makes every
// request fail with detect.ErrNoDetector.
func NewPredictionPresenter(detector detect.Detector, logger *slog.Logger) *PredictionPresenter {
	base, stop := context.WithCancel(context.Background())
	return &PredictionPresenter{
		detector: detector,
		logger:   logger,
		workCh:   make(chan predictionTask, 1),
		resultCh: make(chan PredictionResult, 1),
		base:     base,
		stop:     stop,
	}
}

// Available reports whether a detector is configured.
func (p *PredictionPresenter) Available() bool { return p != nil && p.detector != nil }

// Request schedules inference for the image of session id, cancelling any
// request still in flight.
func (p *PredictionPresenter) Request(id uuid.UUID, path string, size image.Point, confidence float64) error {
	if !p.Available() {
		return detect.ErrNoDetector
	}
	if p.base.Err() != nil {
		return errors.New("prediction worker closed")
	}
	p.ensureWorker()

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(p.base)
	p.cancel = cancel
	p.latest = id
	p.mu.Unlock()

	p.dispatchTask(predictionTask{ctx: ctx, sessionID: id, path: path, size: size, confidence: confidence})
	if p.logger != nil {
		p.logger.Debug("prediction requested", "session", id.String(), "confidence", confidence)
	}
	return nil
}

// Cancel aborts the in-flight request and forgets the pending session.
func (p *PredictionPresenter) Cancel() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.latest = uuid.Nil
	p.mu.Unlock()
}

// Pending reports whether a request is outstanding.
func (p *PredictionPresenter) Pending() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest != uuid.Nil
}

// ProcessResults drains finished work. Call from the UI tick.
func (p *PredictionPresenter) ProcessResults() {
	if p == nil {
		return
	}
	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			return
		}
	}
}

// Close stops the worker. Further requests fail.
func (p *PredictionPresenter) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.Cancel()
		p.stop()
		close(p.workCh)
	})
}

func (p *PredictionPresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *PredictionPresenter) runWorker() {
	for task := range p.workCh {
		if task.ctx.Err() != nil {
			continue
		}
		res := p.executeTask(task)
		if task.ctx.Err() != nil {
			if p.logger != nil {
				p.logger.Debug("prediction cancelled", "session", task.sessionID.String())
			}
			continue
		}
		select {
		case p.resultCh <- res:
		default:
			select {
			case <-p.resultCh:
			default:
			}
			select {
			case p.resultCh <- res:
			default:
			}
		}
	}
}

func (p *PredictionPresenter) dispatchTask(task predictionTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

func (p *PredictionPresenter) executeTask(task predictionTask) (res PredictionResult) {
	res.SessionID = task.sessionID
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Items = nil
			res.Err = fmt.Errorf("detector panic: %v", r)
		}
		res.Duration = time.Since(start)
	}()
	dets, err := p.detector.Detect(task.ctx, detect.Request{ImagePath: task.path, Confidence: task.confidence})
	if err != nil {
		res.Err = fmt.Errorf("detect: %w", err)
		return res
	}
	if task.size.X > 0 && task.size.Y > 0 {
		dets = detect.ClipToImage(dets, image.Rect(0, 0, task.size.X, task.size.Y))
	}
	res.Items = detect.ToAnnotations(dets, task.confidence)
	return res
}

func (p *PredictionPresenter) handleResult(res PredictionResult) {
	p.mu.Lock()
	current := p.latest
	if res.SessionID == current && p.cancel != nil {
		p.cancel()
		p.cancel = nil
		p.latest = uuid.Nil
	}
	p.mu.Unlock()
	if res.SessionID != current {
		if p.logger != nil {
			p.logger.Debug("stale prediction dropped", "session", res.SessionID.String())
		}
		return
	}
	if res.Err != nil && p.logger != nil {
		p.logger.Error("prediction", "error", res.Err)
	}
	if p.OnResult != nil {
		p.OnResult(res)
	}
}
