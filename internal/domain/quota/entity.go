// Package quota implements the per-session daily usage ledger: a
// persistent, atomic check-and-increment counter per (session, date,
// service) enforced before a generation starts and incremented only after
// it succeeds.
package quota

import (
	"errors"
	"time"
)

// Service identifies a quota-metered generation kind.
type Service string

const (
	ServiceImage  Service = "image"
	ServiceVideo  Service = "video"
	ServiceAvatar Service = "avatar"
)

// Limits maps a Service to its daily cap.
type Limits map[Service]int

// DefaultLimits returns the spec.md defaults (image=10, video=2, avatar=1).
func DefaultLimits() Limits {
	return Limits{
		ServiceImage:  10,
		ServiceVideo:  2,
		ServiceAvatar: 1,
	}
}

// Usage is a single session's per-day counters.
type Usage struct {
	SessionID   string    `json:"session_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	ImageCount  int       `json:"image_count"`
	VideoCount  int       `json:"video_count"`
	AvatarCount int       `json:"avatar_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u *Usage) count(service Service) int {
	switch service {
	case ServiceImage:
		return u.ImageCount
	case ServiceVideo:
		return u.VideoCount
	case ServiceAvatar:
		return u.AvatarCount
	default:
		return 0
	}
}

func (u *Usage) increment(service Service) {
	switch service {
	case ServiceImage:
		u.ImageCount++
	case ServiceVideo:
		u.VideoCount++
	case ServiceAvatar:
		u.AvatarCount++
	}
}

// CheckResult is the answer to a Check call.
type CheckResult struct {
	Allowed   bool
	Current   int
	Limit     int
	Remaining int
}

// DailyStats aggregates usage for a single date across all sessions.
type DailyStats struct {
	Date         string
	Sessions     int
	ImageTotal   int
	VideoTotal   int
	AvatarTotal  int
	ImageAverage float64
	VideoAverage float64
}

var (
	// ErrQuotaExceeded is returned by Increment when the daily cap for the
	// service has already been reached.
	ErrQuotaExceeded = errors.New("quota: daily limit exceeded")
	// ErrIO wraps persistence failures; the caller should treat these as
	// fatal for the in-flight request (spec.md §7, QuotaIO).
	ErrIO = errors.New("quota: storage error")
)

func todayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

func rowKey(sessionID, date string) string {
	return sessionID + "_" + date
}
