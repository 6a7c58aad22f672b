package models

import (
	"errors"
	"sort"
	"time"
)

// ===========================================
// PLATFORMS
// ===========================================

// Platform identifies an ad delivery channel. The set is closed: every
// switch over Platform must handle all variants explicitly.
type Platform string

const (
	PlatformPinterest Platform = "pinterest"
	PlatformMeta      Platform = "meta"
	PlatformGoogle    Platform = "google"
	PlatformTikTok    Platform = "tiktok"
	PlatformSnapchat  Platform = "snapchat"
)

// AllPlatforms returns every supported platform.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformPinterest,
		PlatformMeta,
		PlatformGoogle,
		PlatformTikTok,
		PlatformSnapchat,
	}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformPinterest, PlatformMeta, PlatformGoogle, PlatformTikTok, PlatformSnapchat:
		return true
	}
	return false
}

// ===========================================
// EVENT TYPES
// ===========================================

// EventType identifies the kind of interaction a touchpoint records.
type EventType string

const (
	EventImpression EventType = "impression"
	EventClick      EventType = "click"
	EventView       EventType = "view"
	EventSave       EventType = "save"
	EventEngagement EventType = "engagement"
)

// Valid reports whether e is a known event type.
func (e EventType) Valid() bool {
	switch e {
	case EventImpression, EventClick, EventView, EventSave, EventEngagement:
		return true
	}
	return false
}

// ===========================================
// TOUCHPOINT
// ===========================================

// Touchpoint is a single platform-attributable interaction preceding a
// conversion. Position is 1-based and assigned by ascending timestamp
// within a journey.
type Touchpoint struct {
	Platform   Platform  `json:"platform"`
	CampaignID string    `json:"campaign_id"`
	AdID       string    `json:"ad_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	EventType  EventType `json:"event_type"`
	Position   int       `json:"position"`
}

// Validate checks the touchpoint fields used at ingestion time.
func (t *Touchpoint) Validate() error {
	if !t.Platform.Valid() {
		return errors.New("unknown platform: " + string(t.Platform))
	}
	if !t.EventType.Valid() {
		return errors.New("unknown event type: " + string(t.EventType))
	}
	if t.CampaignID == "" {
		return errors.New("campaign_id is required")
	}
	if t.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}

// ===========================================
// CUSTOMER JOURNEY
// ===========================================

// CustomerJourney is the ordered touchpoint history plus outcome for one
// converting user/session. Journeys are built once and never mutated by
// the attribution engine.
type CustomerJourney struct {
	UserID              string       `json:"user_id"`
	SessionID           string       `json:"session_id"`
	Touchpoints         []Touchpoint `json:"touchpoints"`
	ConversionValue     float64      `json:"conversion_value"`
	ConversionTimestamp time.Time    `json:"conversion_timestamp"`
}

// NewCustomerJourney builds a journey from raw touchpoints. The input is
// copied, sorted ascending by timestamp and positions are reassigned, so
// the caller's slice is never shared or reordered.
func NewCustomerJourney(userID, sessionID string, touchpoints []Touchpoint, conversionValue float64, convertedAt time.Time) CustomerJourney {
	tps := make([]Touchpoint, len(touchpoints))
	copy(tps, touchpoints)
	sort.SliceStable(tps, func(i, j int) bool {
		return tps[i].Timestamp.Before(tps[j].Timestamp)
	})
	for i := range tps {
		tps[i].Position = i + 1
	}
	return CustomerJourney{
		UserID:              userID,
		SessionID:           sessionID,
		Touchpoints:         tps,
		ConversionValue:     conversionValue,
		ConversionTimestamp: convertedAt,
	}
}

// TouchpointCount returns the number of touchpoints in the journey.
func (j *CustomerJourney) TouchpointCount() int {
	return len(j.Touchpoints)
}

// LastTouchpoint returns the final touchpoint or nil for an empty journey.
func (j *CustomerJourney) LastTouchpoint() *Touchpoint {
	if len(j.Touchpoints) == 0 {
		return nil
	}
	return &j.Touchpoints[len(j.Touchpoints)-1]
}
