package attribution

import (
	"errors"
	"fmt"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// ErrCollaboratorUnavailable marks a trend/persona/metrics provider
// failure. It is always recovered locally with neutral defaults and never
// propagated to callers of the engine.
var ErrCollaboratorUnavailable = errors.New("collaborator unavailable")

// InvalidJourneyError reports a journey the engine refuses to attribute:
// zero touchpoints, unordered touchpoints, or a conversion timestamp
// earlier than the last touchpoint.
type InvalidJourneyError struct {
	UserID string
	Reason string
}

func (e *InvalidJourneyError) Error() string {
	return fmt.Sprintf("invalid journey for user %q: %s", e.UserID, e.Reason)
}

// UnknownModelError reports a request for an unsupported model variant.
type UnknownModelError struct {
	Model models.AttributionModel
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown attribution model %q", e.Model)
}

// NormalizationError reports score weights that failed to sum to 1.0
// within tolerance. This indicates an algorithm defect and is never
// silently corrected.
type NormalizationError struct {
	Model models.AttributionModel
	Sum   float64
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s scores sum to %.9f, expected 1.0", e.Model, e.Sum)
}
