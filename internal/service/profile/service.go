package profile

import (
	"bytes"
	"context"

	"github.com/oggyb/crush-radar/internal/app"
	"github.com/oggyb/crush-radar/internal/auth"
	"github.com/oggyb/crush-radar/internal/db"
	svcErr "github.com/oggyb/crush-radar/internal/errors"
	domain "github.com/oggyb/crush-radar/internal/profile"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// Service implements the ProfileService gRPC API. Every method acts on the
// caller's own profile; the identity comes from the auth interceptor.
type Service struct {
	appCtx *app.AppContext

	pb.UnimplementedProfileServiceServer
}

func NewProfileService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// GetMyProfile returns the caller's profile, creating it on the first visit.
func (s *Service) GetMyProfile(ctx context.Context, _ *pb.GetMyProfileRequest) (*pb.ProfileResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("GetMyProfile called", "identity", id.ID)

	p, created, err := s.appCtx.Profiles.Ensure(ctx, id.ID, id.Email)
	if err != nil {
		s.appCtx.Logger.Error("Ensure profile failed", "identity", id.ID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{Profile: ToProto(p), Created: created}, nil
}

// UpdateMyProfile applies a partial update.
func (s *Service) UpdateMyProfile(ctx context.Context, req *pb.UpdateMyProfileRequest) (*pb.ProfileResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("UpdateMyProfile called", "identity", id.ID)

	p, err := s.appCtx.Profiles.Update(ctx, id.ID, domain.UpdateInput{
		Name:   req.Name,
		Gender: req.Gender,
		Class:  req.Class,
		Batch:  req.Batch,
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{Profile: ToProto(p)}, nil
}

// UploadAvatar replaces the caller's avatar with the uploaded image.
func (s *Service) UploadAvatar(ctx context.Context, req *pb.UploadAvatarRequest) (*pb.ProfileResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("UploadAvatar called", "identity", id.ID, "size", len(req.Data), "content_type", req.ContentType)

	p, err := s.appCtx.Profiles.UploadAvatar(ctx, id.ID, domain.Upload{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        int64(len(req.Data)),
		Body:        bytes.NewReader(req.Data),
	})
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{Profile: ToProto(p)}, nil
}

func (s *Service) RemoveAvatar(ctx context.Context, _ *pb.RemoveAvatarRequest) (*pb.ProfileResponse, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("RemoveAvatar called", "identity", id.ID)

	p, err := s.appCtx.Profiles.RemoveAvatar(ctx, id.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.ProfileResponse{Profile: ToProto(p)}, nil
}

// GetSession returns the header view (display name and avatar).
func (s *Service) GetSession(ctx context.Context, _ *pb.GetSessionRequest) (*pb.SessionView, error) {
	id, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("GetSession called", "identity", id.ID)

	if _, _, err := s.appCtx.Profiles.Ensure(ctx, id.ID, id.Email); err != nil {
		return nil, svcErr.Map(err)
	}
	v, err := s.appCtx.Sessions.View(ctx, id.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.SessionView{IdentityKey: v.IdentityKey, DisplayName: v.DisplayName, AvatarUrl: v.AvatarURL}, nil
}

// ToProto converts a profile row for the wire.
func ToProto(p *db.Profile) *pb.Profile {
	out := &pb.Profile{
		IdentityKey:    p.ID,
		Email:          p.Email,
		Name:           p.Name,
		Gender:         p.Gender,
		Class:          p.Class,
		Batch:          p.Batch,
		HintsRemaining: int32(p.HintsRemaining),
	}
	if p.AvatarURL != nil {
		out.AvatarUrl = *p.AvatarURL
	}
	return out
}

func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, svcErr.Unauthenticated("sign in required")
	}
	return id, nil
}
