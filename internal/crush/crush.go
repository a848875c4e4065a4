// Package crush implements crush selection and mutual-match determination.
//
// A crush is a directed edge sender -> receiver owned by the sender. A match
// between A and B exists exactly when both A -> B and B -> A exist; it is
// derived from the edges at read time and never stored on its own.
package crush

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidTarget is returned when a viewer targets itself or nobody.
	// It is raised before any store call.
	ErrInvalidTarget = errors.New("invalid crush target")

	// ErrEdgeWriteFailed means the store could not complete a toggle.
	// The caller should keep its last confirmed state and may retry.
	ErrEdgeWriteFailed = errors.New("crush edge write failed")

	// ErrToggleInFlight means another toggle for the same pair is running.
	ErrToggleInFlight = errors.New("crush toggle already in progress")

	// ErrMatchFetchFailed means the edge scan failed. It is never reported
	// as an empty match list.
	ErrMatchFetchFailed = errors.New("match fetch failed")

	// ErrCandidateFetchFailed means candidate profiles could not be loaded.
	ErrCandidateFetchFailed = errors.New("candidate fetch failed")

	// ErrProfileMissingForCounterpart marks a match whose counterpart profile
	// could not be loaded. ComputeMatches degrades to a placeholder instead
	// of returning it.
	ErrProfileMissingForCounterpart = errors.New("profile missing for counterpart")
)

// UnknownName is shown for a counterpart whose profile is gone.
const UnknownName = "Unknown"

// Profile is the display data of an identity.
type Profile struct {
	ID             string
	Name           string
	AvatarURL      string
	Gender         string
	Class          string
	Batch          string
	HintsRemaining int
}

// Edge is one directed crush.
type Edge struct {
	Sender    string
	Receiver  string
	CreatedAt time.Time
}

// Candidate is a browsable profile and whether the viewer selected it.
type Candidate struct {
	Profile
	Selected bool
}

// ToggleResult reports what a toggle did.
type ToggleResult string

const (
	Added   ToggleResult = "added"
	Removed ToggleResult = "removed"
)

// Match is one mutual pair seen from the viewer's side.
type Match struct {
	Counterpart Profile
	// Missing is set when the counterpart profile could not be loaded and
	// Counterpart only carries the identity key and UnknownName.
	Missing   bool
	MatchedAt time.Time
}

// MatchList is the result of ComputeMatches. Matches is never nil, so an
// empty list is distinguishable from a failed fetch (which returns an error).
type MatchList struct {
	Viewer  string
	Matches []Match
}

// Empty reports whether the viewer has no matches.
func (l *MatchList) Empty() bool { return len(l.Matches) == 0 }

// ProfileStore reads profiles.
type ProfileStore interface {
	// ListProfilesExcluding returns every completed profile except viewer.
	ListProfilesExcluding(ctx context.Context, viewer string) ([]Profile, error)
	// GetProfiles batch-loads profiles by key. Unknown keys are absent
	// from the result.
	GetProfiles(ctx context.Context, ids []string) (map[string]Profile, error)
}

// EdgeStore persists crush edges.
type EdgeStore interface {
	// ToggleEdge deletes sender -> receiver when present and inserts it
	// otherwise, as one atomic step. It reports whether the edge now exists.
	ToggleEdge(ctx context.Context, sender, receiver string) (added bool, err error)
	// OutgoingEdges lists edges sent by sender.
	OutgoingEdges(ctx context.Context, sender string) ([]Edge, error)
	// EdgesInvolving lists edges where id is the sender OR the receiver,
	// in a single scan.
	EdgesInvolving(ctx context.Context, id string) ([]Edge, error)
	// CountOutgoing counts edges sent by sender.
	CountOutgoing(ctx context.Context, sender string) (int64, error)
}

// Guard serializes toggles on the same key.
type Guard interface {
	// Acquire reports ok=false when the key is already held elsewhere.
	// release must be called once the guarded work is done.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// CountCache caches the number of crushes a viewer has sent.
type CountCache interface {
	GetCrushCount(ctx context.Context, viewer string) (int64, bool, error)
	// CrushCountGeneration is read before a count is loaded from the store.
	CrushCountGeneration(ctx context.Context, viewer string) (int64, error)
	// SetCrushCount stores n only if DropCrushCount has not run since gen
	// was read.
	SetCrushCount(ctx context.Context, viewer string, n, gen int64) (stored bool, err error)
	DropCrushCount(ctx context.Context, viewer string) error
}
