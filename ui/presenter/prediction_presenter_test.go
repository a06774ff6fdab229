package presenter

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/fin-annotator-go/domain/detect"
)

func waitResult(t *testing.T, p *PredictionPresenter, got *[]PredictionResult, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.ProcessResults()
		if len(*got) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d results, got %d", n, len(*got))
}

func TestPredictionPresenter_DeliversResult(t *testing.T) {
	det := detect.DetectorFunc(func(ctx context.Context, req detect.Request) ([]detect.Detection, error) {
		return []detect.Detection{
			{X1: 10, Y1: 10, X2: 50, Y2: 40, ClassID: 1, Confidence: 0.9},
			{X1: 0, Y1: 0, X2: 5, Y2: 5, ClassID: 0, Confidence: 0.1},
		}, nil
	})
	p := NewPredictionPresenter(det, discardLogger)
	defer p.Close()
	var got []PredictionResult
	p.OnResult = func(r PredictionResult) { got = append(got, r) }

	id := uuid.New()
	if err := p.Request(id, "a.jpg", image.Pt(100, 100), 0.4); err != nil {
		t.Fatalf("request: %v", err)
	}
	waitResult(t, p, &got, 1)
	r := got[0]
	if r.SessionID != id || r.Err != nil || len(r.Items) != 1 {
		t.Fatalf("unexpected result %+v", r)
	}
	if b := r.Items[0].Box; b.X != 10 || b.Y != 10 || b.W != 40 || b.H != 30 {
		t.Fatalf("box = %+v", b)
	}
	if p.Pending() {
		t.Fatalf("request should be settled after delivery")
	}
}

func TestPredictionPresenter_NoDetector(t *testing.T) {
	p := NewPredictionPresenter(nil, discardLogger)
	defer p.Close()
	if p.Available() {
		t.Fatalf("nil detector should be unavailable")
	}
	if err := p.Request(uuid.New(), "a.jpg", image.Pt(1, 1), 0.4); !errors.Is(err, detect.ErrNoDetector) {
		t.Fatalf("expected ErrNoDetector, got %v", err)
	}
}

func TestPredictionPresenter_CancelDropsResult(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	det := detect.DetectorFunc(func(ctx context.Context, req detect.Request) ([]detect.Detection, error) {
		calls.Add(1)
		<-release
		return []detect.Detection{{X1: 1, Y1: 1, X2: 20, Y2: 20, ClassID: 1, Confidence: 1}}, nil
	})
	p := NewPredictionPresenter(det, discardLogger)
	defer p.Close()
	var got []PredictionResult
	p.OnResult = func(r PredictionResult) { got = append(got, r) }

	if err := p.Request(uuid.New(), "a.jpg", image.Pt(100, 100), 0.4); err != nil {
		t.Fatalf("request: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Cancel()
	close(release)
	time.Sleep(50 * time.Millisecond)
	p.ProcessResults()
	if len(got) != 0 {
		t.Fatalf("cancelled request delivered %d results", len(got))
	}
}

func TestPredictionPresenter_NewerRequestWins(t *testing.T) {
	det := detect.DetectorFunc(func(ctx context.Context, req detect.Request) ([]detect.Detection, error) {
		if req.ImagePath == "slow.jpg" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, nil
	})
	p := NewPredictionPresenter(det, discardLogger)
	defer p.Close()
	var got []PredictionResult
	p.OnResult = func(r PredictionResult) { got = append(got, r) }

	_ = p.Request(uuid.New(), "slow.jpg", image.Pt(10, 10), 0.4)
	second := uuid.New()
	_ = p.Request(second, "fast.jpg", image.Pt(10, 10), 0.4)
	waitResult(t, p, &got, 1)
	time.Sleep(20 * time.Millisecond)
	p.ProcessResults()
	if len(got) != 1 || got[0].SessionID != second {
		t.Fatalf("expected only the newest result, got %+v", got)
	}
}

func TestPredictionPresenter_DetectorError(t *testing.T) {
	boom := errors.New("model offline")
	det := detect.DetectorFunc(func(context.Context, detect.Request) ([]detect.Detection, error) { return nil, boom })
	p := NewPredictionPresenter(det, discardLogger)
	defer p.Close()
	var got []PredictionResult
	p.OnResult = func(r PredictionResult) { got = append(got, r) }
	_ = p.Request(uuid.New(), "a.jpg", image.Pt(10, 10), 0.4)
	waitResult(t, p, &got, 1)
	if !errors.Is(got[0].Err, boom) {
		t.Fatalf("expected wrapped detector error, got %v", got[0].Err)
	}
}

func TestPredictionPresenter_PanicRecovered(t *testing.T) {
	det := detect.DetectorFunc(func(context.Context, detect.Request) ([]detect.Detection, error) { panic("bad tensor") })
	p := NewPredictionPresenter(det, discardLogger)
	defer p.Close()
	var got []PredictionResult
	p.OnResult = func(r PredictionResult) { got = append(got, r) }
	_ = p.Request(uuid.New(), "a.jpg", image.Pt(10, 10), 0.4)
	waitResult(t, p, &got, 1)
	if got[0].Err == nil {
		t.Fatalf("panic should surface as an error")
	}
}

func TestPredictionPresenter_ClosedRejects(t *testing.T) {
	p := NewPredictionPresenter(detect.DetectorFunc(func(context.Context, detect.Request) ([]detect.Detection, error) { return nil, nil }), discardLogger)
	p.Close()
	p.Close()
	if err := p.Request(uuid.New(), "a.jpg", image.Pt(1, 1), 0.4); err == nil {
		t.Fatalf("closed presenter should reject requests")
	}
}
