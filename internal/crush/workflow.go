package crush

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/oggyb/crush-radar/internal/logger"
	"github.com/oggyb/crush-radar/internal/metrics"
	"github.com/oggyb/crush-radar/internal/utils/pagination"
)

// Workflow runs crush selection and match materialization on top of the
// profile and edge stores. It is safe for concurrent use.
type Workflow struct {
	profiles ProfileStore
	edges    EdgeStore
	guard    Guard
	counts   CountCache
	log      *slog.Logger
}

type Option func(*Workflow)

// WithGuard rejects a toggle while another toggle on the same pair runs.
func WithGuard(g Guard) Option { return func(w *Workflow) { w.guard = g } }

// WithCountCache caches CountCrushes results.
func WithCountCache(c CountCache) Option { return func(w *Workflow) { w.counts = c } }

func WithLogger(l *slog.Logger) Option { return func(w *Workflow) { w.log = logger.OrDiscard(l) } }

// NewWorkflow wires a Workflow. Without options toggles are unguarded and
// counts are read straight from the edge store.
func NewWorkflow(profiles ProfileStore, edges EdgeStore, opts ...Option) *Workflow {
	w := &Workflow{
		profiles: profiles,
		edges:    edges,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ListCandidates returns every completed profile except the viewer's own,
// flagging those the viewer has selected. Ordered by name, then key.
func (w *Workflow) ListCandidates(ctx context.Context, viewer string) ([]Candidate, error) {
	profiles, err := w.profiles.ListProfilesExcluding(ctx, viewer)
	if err != nil {
		w.log.Error("list candidates failed", "viewer", viewer, "err", err)
		return nil, fetchErr(ctx, ErrCandidateFetchFailed, err)
	}

	outgoing, err := w.edges.OutgoingEdges(ctx, viewer)
	if err != nil {
		w.log.Error("list outgoing crushes failed", "viewer", viewer, "err", err)
		return nil, fetchErr(ctx, ErrCandidateFetchFailed, err)
	}
	selected := make(map[string]struct{}, len(outgoing))
	for _, e := range outgoing {
		selected[e.Receiver] = struct{}{}
	}

	out := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == viewer {
			continue
		}
		_, ok := selected[p.ID]
		out = append(out, Candidate{Profile: p, Selected: ok})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CandidatePage filters the viewer's candidates and returns the page after
// token. pageSize <= 0 returns every remaining candidate.
func (w *Workflow) CandidatePage(ctx context.Context, viewer string, f Filter, token string, pageSize int) ([]Candidate, string, error) {
	all, err := w.ListCandidates(ctx, viewer)
	if err != nil {
		return nil, "", err
	}
	return pagination.Page(f.Apply(all), candidateCursor, token, pageSize)
}

func candidateCursor(c Candidate) pagination.Cursor {
	return pagination.Cursor{Name: strings.ToLower(c.Name), ID: c.ID}
}

// ToggleCrush flips the viewer -> target edge: it is created when absent and
// removed when present. Calling it twice is a net no-op. target must name an
// existing profile.
func (w *Workflow) ToggleCrush(ctx context.Context, viewer, target string) (ToggleResult, error) {
	if viewer == "" || target == "" || viewer == target {
		metrics.CrushToggles.WithLabelValues("rejected").Inc()
		return "", ErrInvalidTarget
	}

	known, err := w.profiles.GetProfiles(ctx, []string{target})
	if err != nil {
		metrics.CrushToggles.WithLabelValues("failed").Inc()
		w.log.Error("toggle target lookup failed", "viewer", viewer, "target", target, "err", err)
		return "", fetchErr(ctx, ErrEdgeWriteFailed, err)
	}
	if _, ok := known[target]; !ok {
		metrics.CrushToggles.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: no profile %q", ErrInvalidTarget, target)
	}

	if w.guard != nil {
		release, ok, err := w.guard.Acquire(ctx, viewer+":"+target)
		switch {
		case err != nil:
			// Proceed unguarded; ToggleEdge is atomic.
			w.log.Warn("toggle guard unavailable", "viewer", viewer, "target", target, "err", err)
		case !ok:
			metrics.CrushToggles.WithLabelValues("busy").Inc()
			return "", ErrToggleInFlight
		default:
			defer release()
		}
	}

	added, err := w.edges.ToggleEdge(ctx, viewer, target)
	if err != nil {
		metrics.CrushToggles.WithLabelValues("failed").Inc()
		w.log.Error("toggle crush failed", "viewer", viewer, "target", target, "err", err)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrEdgeWriteFailed, err)
	}

	if w.counts != nil {
		if err := w.counts.DropCrushCount(ctx, viewer); err != nil {
			w.log.Warn("drop crush count failed", "viewer", viewer, "err", err)
		}
	}

	result := Removed
	if added {
		result = Added
	}
	metrics.CrushToggles.WithLabelValues(string(result)).Inc()
	w.log.Debug("crush toggled", "viewer", viewer, "target", target, "result", result)
	return result, nil
}

// ComputeMatches returns the viewer's mutual matches enriched with
// counterpart profiles.
//
// A failed edge scan yields ErrMatchFetchFailed, never an empty list.
// Counterparts whose profile cannot be loaded are returned as placeholders.
func (w *Workflow) ComputeMatches(ctx context.Context, viewer string) (*MatchList, error) {
	edges, err := w.edges.EdgesInvolving(ctx, viewer)
	if err != nil {
		metrics.MatchFetches.WithLabelValues("failed").Inc()
		w.log.Error("match scan failed", "viewer", viewer, "err", err)
		return nil, fetchErr(ctx, ErrMatchFetchFailed, err)
	}

	pairs := Materialize(viewer, edges)
	list := &MatchList{Viewer: viewer, Matches: make([]Match, 0, len(pairs))}
	if len(pairs) > 0 {
		w.attachCounterparts(ctx, list, pairs)
	}

	result := "ok"
	if list.Empty() {
		result = "empty"
	}
	metrics.MatchFetches.WithLabelValues(result).Inc()
	return list, nil
}

// attachCounterparts appends one Match per pair to list.
func (w *Workflow) attachCounterparts(ctx context.Context, list *MatchList, pairs []Pair) {
	viewer := list.Viewer
	ids := make([]string, len(pairs))
	for i, p := range pairs {
		ids[i] = p.Counterpart
	}

	profiles, err := w.profiles.GetProfiles(ctx, ids)
	if err != nil {
		// Degrade every entry to a placeholder rather than failing the list.
		w.log.Warn("counterpart profiles unavailable",
			"viewer", viewer, "count", len(ids), "err", fmt.Errorf("%w: %v", ErrProfileMissingForCounterpart, err))
		profiles = nil
	}

	for _, p := range pairs {
		profile, ok := profiles[p.Counterpart]
		m := Match{Counterpart: profile, MatchedAt: p.MatchedAt}
		if !ok {
			metrics.MissingCounterparts.Inc()
			m.Missing = true
			m.Counterpart = Profile{ID: p.Counterpart, Name: UnknownName}
		}
		list.Matches = append(list.Matches, m)
	}
}

// CountCrushes returns how many crushes the viewer has sent.
// Cache-first; on miss the count is read from the edge store and cached,
// unless a toggle dropped the entry while the count was loading.
func (w *Workflow) CountCrushes(ctx context.Context, viewer string) (int64, error) {
	cacheable := w.counts != nil
	var gen int64
	if cacheable {
		if n, ok, err := w.counts.GetCrushCount(ctx, viewer); err == nil && ok {
			return n, nil
		} else if err != nil {
			w.log.Warn("crush count cache read failed", "viewer", viewer, "err", err)
		}
		var err error
		if gen, err = w.counts.CrushCountGeneration(ctx, viewer); err != nil {
			w.log.Warn("crush count generation read failed", "viewer", viewer, "err", err)
			cacheable = false
		}
	}

	n, err := w.edges.CountOutgoing(ctx, viewer)
	if err != nil {
		return 0, fetchErr(ctx, ErrCandidateFetchFailed, err)
	}

	if cacheable {
		stored, err := w.counts.SetCrushCount(ctx, viewer, n, gen)
		if err != nil {
			w.log.Warn("crush count cache write failed", "viewer", viewer, "err", err)
		} else if !stored {
			w.log.Debug("crush count changed while loading", "viewer", viewer)
		}
	}
	return n, nil
}

// fetchErr translates a store error into kind, keeping context errors intact
// so callers can tell a dropped request from a broken store.
func fetchErr(ctx context.Context, kind, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %v", kind, err)
}
