package crush

import (
	"sort"
	"time"
)

// Pair is a mutual relationship between the viewer and Counterpart.
// MatchedAt is when the second of the two edges was created.
type Pair struct {
	Counterpart string
	MatchedAt   time.Time
}

// Materialize derives the viewer's mutual pairs from edges touching the viewer.
//
// Edges are partitioned into "viewer sent" and "viewer received", each keyed by
// the other identity. A counterpart qualifies when it appears in both halves.
// Self edges and edges not involving the viewer are ignored, and duplicates
// collapse, so each counterpart appears at most once.
//
// Output is sorted by MatchedAt descending, then counterpart key.
func Materialize(viewer string, edges []Edge) []Pair {
	sent := make(map[string]time.Time)
	received := make(map[string]time.Time)

	for _, e := range edges {
		if e.Sender == e.Receiver {
			continue
		}
		switch viewer {
		case e.Sender:
			sent[e.Receiver] = later(sent[e.Receiver], e.CreatedAt)
		case e.Receiver:
			received[e.Sender] = later(received[e.Sender], e.CreatedAt)
		}
	}

	pairs := make([]Pair, 0)
	for other, sentAt := range sent {
		receivedAt, ok := received[other]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Counterpart: other, MatchedAt: later(sentAt, receivedAt)})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if !pairs[i].MatchedAt.Equal(pairs[j].MatchedAt) {
			return pairs[i].MatchedAt.After(pairs[j].MatchedAt)
		}
		return pairs[i].Counterpart < pairs[j].Counterpart
	})
	return pairs
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
