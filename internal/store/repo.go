package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that require the row to exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique column already holds the value.
var ErrConflict = errors.New("already exists")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	UserID  string    // exact user match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// Progress is the persisted learner state, one row per user.
type Progress struct {
	UserID             string    `json:"-"`
	Topic              *string   `json:"topic"`
	CurrentLevel       *int      `json:"current_level"`
	DiagnosticAttempts int       `json:"diagnostic_attempts"`
	DiagnosticPassed   bool      `json:"diagnostic_passed"`
	HintStage          int       `json:"hint_stage"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ProgressPatch is a partial update. Only present fields are written.
type ProgressPatch struct {
	Topic              Opt[string] `json:"topic"`
	CurrentLevel       Opt[int]    `json:"current_level"`
	DiagnosticAttempts Opt[int]    `json:"diagnostic_attempts"`
	DiagnosticPassed   Opt[bool]   `json:"diagnostic_passed"`
	HintStage          Opt[int]    `json:"hint_stage"`
}

// Empty reports whether the patch has no present field.
func (p ProgressPatch) Empty() bool {
	return !p.Topic.Set &&
		!p.CurrentLevel.Set &&
		!p.DiagnosticAttempts.Set &&
		!p.DiagnosticPassed.Set &&
		!p.HintStage.Set
}

// ProgressRepo persists learner progress.
type ProgressRepo interface {
	// Get returns the user's row, or nil if none exists.
	Get(ctx context.Context, userID string) (*Progress, error)

	// Upsert writes the present fields of patch, creating the row if
	// needed, and returns the row as stored.
	Upsert(ctx context.Context, userID string, patch ProgressPatch) (*Progress, error)

	// Delete removes the user's row. Deleting a missing row is not an error.
	Delete(ctx context.Context, userID string) error
}

// User is a registered account.
type User struct {
	ID            string
	Email         string
	PasswordHash  string
	Username      *string
	ProfilePicURL *string
	IsOnboarded   bool
	CreatedAt     time.Time
}

// UserUpdate carries the profile fields that may change after signup.
type UserUpdate struct {
	Username      Opt[string]
	ProfilePicURL Opt[string]
	IsOnboarded   Opt[bool]
}

// UserRepo manages accounts.
type UserRepo interface {
	// Create inserts u. Returns ErrConflict if the email is taken.
	Create(ctx context.Context, u *User) error

	// ByID returns the user or ErrNotFound.
	ByID(ctx context.Context, id string) (*User, error)

	// ByEmail returns the user or ErrNotFound.
	ByEmail(ctx context.Context, email string) (*User, error)

	// ByUsername returns the user or ErrNotFound.
	ByUsername(ctx context.Context, username string) (*User, error)

	// Update applies the present fields and returns the stored row.
	Update(ctx context.Context, id string, upd UserUpdate) (*User, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	UserID       string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM events under one key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
