package eventbus

import (
	"ico-builder-go/internal/platform/logging"
)

// RegisterLogHandlers logs every domain event at info level.
func RegisterLogHandlers(b *Bus, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default
	}

	handlers := map[string]interface{}{
		EventCandidateRejected: func(d CandidateRejectedData) {
			logger.InfoTag("Event", "rejected %s (%dx%d, %d bytes): %s", d.Name, d.Width, d.Height, d.Size, d.Reason)
		},
		EventIconBuilt: func(d IconBuiltData) {
			logger.InfoTag("Event", "built %s: %d entries, %d bytes, %d rejected in %s", d.Name, d.Entries, d.Size, d.Rejected, d.Duration)
		},
		EventArtifactStored: func(d ArtifactData) {
			logger.InfoTag("Event", "stored artifact %s (%s, %d bytes)", d.ID, d.Name, d.Size)
		},
		EventArtifactDeleted: func(d ArtifactData) {
			logger.InfoTag("Event", "deleted artifact %s", d.ID)
		},
	}
	for topic, fn := range handlers {
		if err := b.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}
