package auth

import (
	"context"

	"google.golang.org/grpc/metadata"

	"github.com/oggyb/crush-radar/internal/app"
	domain "github.com/oggyb/crush-radar/internal/auth"
	svcErr "github.com/oggyb/crush-radar/internal/errors"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// Service implements the AuthService gRPC API on top of the auth domain
// service from AppContext.
type Service struct {
	appCtx *app.AppContext

	pb.UnimplementedAuthServiceServer
}

// NewAuthService creates a new Auth service with dependencies from AppContext.
func NewAuthService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// SignUp registers an account and returns a session token.
//
// Example:
//
//	svc.SignUp(ctx, &pb.SignUpRequest{Email: "a@x.io", Password: "secret1"})
func (s *Service) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.SessionResponse, error) {
	s.appCtx.Logger.Debug("SignUp called", "email", req.GetEmail())

	sess, err := s.appCtx.Auth.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toSessionResponse(sess), nil
}

// SignIn exchanges credentials for a session token.
func (s *Service) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.SessionResponse, error) {
	s.appCtx.Logger.Debug("SignIn called", "email", req.GetEmail())

	sess, err := s.appCtx.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return toSessionResponse(sess), nil
}

// SignOut revokes the bearer token the call was made with.
func (s *Service) SignOut(ctx context.Context, _ *pb.SignOutRequest) (*pb.SignOutResponse, error) {
	id, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, svcErr.Unauthenticated("sign in required")
	}
	s.appCtx.Logger.Debug("SignOut called", "identity", id.ID)

	token, ok := bearerFromMetadata(ctx)
	if !ok {
		return nil, svcErr.Unauthenticated("missing bearer token")
	}
	if err := s.appCtx.Auth.SignOut(ctx, token); err != nil {
		return nil, svcErr.Map(err)
	}
	return &pb.SignOutResponse{}, nil
}

// WhoAmI returns the identity behind the bearer token.
func (s *Service) WhoAmI(ctx context.Context, _ *pb.WhoAmIRequest) (*pb.WhoAmIResponse, error) {
	id, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil, svcErr.Unauthenticated("sign in required")
	}
	return &pb.WhoAmIResponse{IdentityKey: id.ID, Email: id.Email}, nil
}

func toSessionResponse(s *domain.Session) *pb.SessionResponse {
	return &pb.SessionResponse{
		Token:         s.Token,
		ExpiresAtUnix: s.ExpiresAt.Unix(),
		IdentityKey:   s.Identity.ID,
		Email:         s.Identity.Email,
	}
}

func bearerFromMetadata(ctx context.Context) (string, bool) {
	md, _ := metadata.FromIncomingContext(ctx)
	for _, v := range md.Get("authorization") {
		if token, ok := domain.BearerToken(v); ok {
			return token, true
		}
	}
	return "", false
}
