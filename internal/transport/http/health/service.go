package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"

	"ico-builder-go/internal/platform/logging"
	"ico-builder-go/internal/platform/observability"
	httptransport "ico-builder-go/internal/transport/http"
)

// StatsProvider reports backend statistics, e.g. the artifact store.
type StatsProvider interface {
	Stats(ctx context.Context) (map[string]any, error)
}

// Service serves GET /health.
type Service struct {
	store   StatsProvider
	started time.Time
	logger  *logging.Logger
}

func NewService(store StatsProvider, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default
	}
	return &Service{store: store, started: time.Now(), logger: logger}
}

func (s *Service) Register(_ context.Context, router *gin.RouterGroup) error {
	router.GET("/health", s.handleHealth)
	return nil
}

func (s *Service) handleHealth(c *gin.Context) {
	status := "ok"
	body := gin.H{
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"icons":          observability.Snapshot("icon."),
	}

	if s.store != nil {
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.logger.WarnTag("HTTP", "store stats failed: %v", err)
			status = "degraded"
			body["store_error"] = err.Error()
		} else {
			body["store"] = stats
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(c.Request.Context()); err == nil {
		body["memory"] = gin.H{
			"total":        vm.Total,
			"available":    vm.Available,
			"used_percent": vm.UsedPercent,
		}
	}

	var rt runtime.MemStats
	runtime.ReadMemStats(&rt)
	body["heap_alloc"] = rt.HeapAlloc
	body["status"] = status

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	httptransport.RespondSuccess(c, code, body, status)
}
