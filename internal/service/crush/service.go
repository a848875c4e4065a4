package crush

import (
	"context"
	"strings"

	"github.com/oggyb/crush-radar/internal/app"
	"github.com/oggyb/crush-radar/internal/auth"
	domain "github.com/oggyb/crush-radar/internal/crush"
	svcErr "github.com/oggyb/crush-radar/internal/errors"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// MaxPageSize caps ListCandidates pages.
const MaxPageSize = 100

// Service implements the CrushService gRPC API.
// It contains the transport logic on top of the crush workflow.
// The viewer is always the authenticated caller.
type Service struct {
	appCtx *app.AppContext

	pb.UnimplementedCrushServiceServer
}

// NewCrushService creates a new Crush service with dependencies from AppContext.
func NewCrushService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// ListCandidates returns browsable profiles with the caller's selections.
//
// Behavior:
//   - Never contains the caller.
//   - Filters are applied in memory, case-insensitively.
//   - page_size = 0 returns everything; otherwise cursor-based pagination.
//
// Example:
//
//	svc.ListCandidates(ctx, &pb.ListCandidatesRequest{Query: "cs-a"})
func (s *Service) ListCandidates(ctx context.Context, req *pb.ListCandidatesRequest) (*pb.ListCandidatesResponse, error) {
	viewer, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("ListCandidates called", "viewer", viewer, "query", req.Query, "token", req.GetPageToken())

	page, next, err := s.appCtx.Crush.CandidatePage(ctx, viewer, domain.Filter{
		Query: req.Query,
		Name:  req.Name,
		Class: req.Class,
		Batch: req.Batch,
	}, req.GetPageToken(), min(int(req.PageSize), MaxPageSize))
	if err != nil {
		s.appCtx.Logger.Error("ListCandidates failed", "viewer", viewer, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListCandidatesResponse{Candidates: make([]*pb.Candidate, 0, len(page)), NextPageToken: next}
	for _, c := range page {
		resp.Candidates = append(resp.Candidates, &pb.Candidate{Profile: PublicProfile(c.Profile), Selected: c.Selected})
	}

	s.appCtx.Logger.Debug("ListCandidates result", "count", len(resp.Candidates), "next_token", next)
	return resp, nil
}

// ToggleCrush selects the target, or withdraws an existing selection.
func (s *Service) ToggleCrush(ctx context.Context, req *pb.ToggleCrushRequest) (*pb.ToggleCrushResponse, error) {
	viewer, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("ToggleCrush called", "viewer", viewer, "target", req.GetTargetIdentityKey())

	res, err := s.appCtx.Crush.ToggleCrush(ctx, viewer, strings.TrimSpace(req.GetTargetIdentityKey()))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ToggleCrushResponse{Result: string(res), Selected: res == domain.Added}, nil
}

// ListMatches returns the caller's mutual matches, most recent first.
// An empty list means no matches; a failed lookup is an error.
func (s *Service) ListMatches(ctx context.Context, _ *pb.ListMatchesRequest) (*pb.ListMatchesResponse, error) {
	viewer, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("ListMatches called", "viewer", viewer)

	list, err := s.appCtx.Crush.ComputeMatches(ctx, viewer)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListMatchesResponse{Matches: make([]*pb.Match, 0, len(list.Matches))}
	for _, m := range list.Matches {
		resp.Matches = append(resp.Matches, &pb.Match{
			Counterpart:     PublicProfile(m.Counterpart),
			Missing:         m.Missing,
			MatchedAtUnixMs: m.MatchedAt.UnixMilli(),
		})
	}

	s.appCtx.Logger.Debug("ListMatches result", "viewer", viewer, "count", len(resp.Matches))
	return resp, nil
}

// CountCrushes returns how many crushes the caller has sent.
// Cache-first: Redis (crushes:count:<id>, 1h TTL refreshed on read), DB fallback.
func (s *Service) CountCrushes(ctx context.Context, _ *pb.CountCrushesRequest) (*pb.CountCrushesResponse, error) {
	viewer, err := viewerID(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("CountCrushes called", "viewer", viewer)

	n, err := s.appCtx.Crush.CountCrushes(ctx, viewer)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.CountCrushesResponse{Count: uint64(n)}, nil
}

// PublicProfile converts a crush profile for the wire.
func PublicProfile(p domain.Profile) *pb.PublicProfile {
	return &pb.PublicProfile{
		IdentityKey: p.ID,
		Name:        p.Name,
		AvatarUrl:   p.AvatarURL,
		Gender:      p.Gender,
		Class:       p.Class,
		Batch:       p.Batch,
	}
}

func viewerID(ctx context.Context) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return "", svcErr.Unauthenticated("sign in required")
	}
	return id.ID, nil
}
