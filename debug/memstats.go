package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// StartMemLogger logs heap statistics together with the process resident set
// every interval until ctx is done. Decoded images held by the image cache
// dominate the heap, so the numbers track the configured cache size.
// RSS failures are logged once and suppressed.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := residentBytes()
			if err != nil && !rssErrLogged {
				logger.Warn("memlog: resident set unavailable", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Debug("memstats",
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.String("heap_alloc", humanize.Bytes(ms.HeapAlloc)),
				slog.String("heap_inuse", humanize.Bytes(ms.HeapInuse)),
				slog.String("heap_sys", humanize.Bytes(ms.HeapSys)),
				slog.String("next_gc", humanize.Bytes(ms.NextGC)),
				slog.String("rss", humanize.Bytes(rss)),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}
