package icon

import (
	"context"
	"strconv"
	"strings"
	"time"

	"ico-builder-go/internal/domain/eventbus"
	"ico-builder-go/internal/platform/errors"
	"ico-builder-go/internal/platform/logging"
	"ico-builder-go/internal/platform/observability"
)

// Options configures a Service.
type Options struct {
	Limits          Limits
	LoadConcurrency int
	DefaultName     string
	Events          eventbus.Publisher
	Logger          *logging.Logger
}

// Report is the outcome of one build request.
type Report struct {
	Artifact   Artifact
	Candidates []Candidate
	Summary    Summary
}

// Service loads sources, validates them and encodes the container.
type Service struct {
	loader      *Loader
	limits      Limits
	defaultName string
	events      eventbus.Publisher
	logger      *logging.Logger
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default
	}
	name := opts.DefaultName
	if name == "" {
		name = DefaultName
	}
	return &Service{
		loader:      NewLoader(opts.Limits.MaxFileSize, opts.LoadConcurrency, logger),
		limits:      opts.Limits,
		defaultName: name,
		events:      opts.Events,
		logger:      logger,
	}
}

// Check loads and validates sources without encoding.
func (s *Service) Check(ctx context.Context, sources []Source) Selection {
	sel := NewSelection(s.limits).Add(s.loader.Load(ctx, sources)...)
	s.reportRejections(sel)
	return sel
}

// Build runs load, validation and encoding. The report is returned even when
// encoding fails so callers can show per-candidate verdicts.
func (s *Service) Build(ctx context.Context, name string, sources []Source) (report *Report, err error) {
	ctx, end := observability.StartSpan(ctx, "icon", "build")
	defer func() { end(err) }()
	start := time.Now()

	if strings.TrimSpace(name) == "" {
		name = s.defaultName
	}
	sel := s.Check(ctx, sources)
	report = &Report{Candidates: sel.Candidates(), Summary: sel.Summary()}

	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(errors.KindDomain, "icon.build", "build canceled", err)
	}

	artifact, err := sel.Build(name)
	if err != nil {
		s.logger.WarnTag("Icon", "build %s failed: %v", NormalizeName(name), err)
		return report, errors.Wrap(errors.KindEncoding, "icon.build", "encode container", err)
	}
	report.Artifact = artifact

	elapsed := time.Since(start)
	observability.RecordMetric(ctx, "icon.built", 1, nil)
	observability.RecordMetric(ctx, "icon.bytes", float64(len(artifact.Data)), map[string]string{
		"entries": strconv.Itoa(len(artifact.Entries)),
	})
	s.logger.InfoTag("Icon", "built %s with %d entries (%d bytes)", artifact.Name, len(artifact.Entries), len(artifact.Data))
	if s.events != nil {
		s.events.PublishAsync(eventbus.EventIconBuilt, eventbus.IconBuiltData{
			Name:     artifact.Name,
			Size:     len(artifact.Data),
			Entries:  len(artifact.Entries),
			Rejected: report.Summary.Rejected,
			Duration: elapsed,
		})
	}
	return report, nil
}

func (s *Service) reportRejections(sel Selection) {
	for _, c := range sel.Candidates() {
		if c.Validity.IsValid() {
			continue
		}
		observability.RecordMetric(context.Background(), "icon.rejected", 1, map[string]string{
			"reason": string(c.Validity.Reason),
		})
		s.logger.DebugTag("Icon", "candidate rejected", map[string]any{
			"name":   c.Name,
			"reason": string(c.Validity.Reason),
			"width":  c.Width,
			"height": c.Height,
		})
		if s.events != nil {
			s.events.PublishAsync(eventbus.EventCandidateRejected, eventbus.CandidateRejectedData{
				ID:     c.ID,
				Name:   c.Name,
				Reason: string(c.Validity.Reason),
				Width:  c.Width,
				Height: c.Height,
				Size:   c.Size(),
			})
		}
	}
}
