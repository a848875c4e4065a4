package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/crush-radar/internal/auth"
	svcErr "github.com/oggyb/crush-radar/internal/errors"
	"github.com/oggyb/crush-radar/internal/logger"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// PublicMethods are reachable without a bearer token. Entries ending in
// "/" match a whole service.
var PublicMethods = []string{
	pb.AuthService_SignUp_FullMethodName,
	pb.AuthService_SignIn_FullMethodName,
	"/grpc.health.v1.Health/",
	"/grpc.reflection.",
}

// Recover turns a handler panic into codes.Internal and logs the stack.
func Recover(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.From(ctx, log).Error("panic recovered",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// UnaryLogging writes one line per call with method, code and duration.
// The request id comes from x-request-id metadata or is generated.
func UnaryLogging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		rid := firstMD(ctx, "x-request-id")
		if rid == "" {
			rid = uuid.NewString()
		}

		l := log.With("request_id", rid, "method", info.FullMethod)
		ctx = logger.Into(ctx, l)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		lvl := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			lvl = slog.LevelError
		}
		l.Log(ctx, lvl, "grpc",
			"code", code.String(),
			"reason", svcErr.Reason(err),
			"dur", time.Since(start),
		)
		return resp, err
	}
}

// WithTimeout bounds calls that arrive without a deadline.
func WithTimeout(d time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok || d <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return handler(ctx, req)
	}
}

// Authenticate verifies the bearer token in the "authorization" metadata
// and stores the identity in the context. Methods in public skip it.
func Authenticate(verifier *auth.Service, public []string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if isPublic(info.FullMethod, public) {
			return handler(ctx, req)
		}

		token, ok := auth.BearerToken(firstMD(ctx, "authorization"))
		if !ok {
			return nil, svcErr.Unauthenticated("missing bearer token")
		}
		id, err := verifier.Verify(ctx, token)
		if err != nil {
			return nil, svcErr.Map(err)
		}
		return handler(auth.WithIdentity(ctx, id), req)
	}
}

func isPublic(method string, public []string) bool {
	for _, p := range public {
		if method == p || (strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".")) && strings.HasPrefix(method, p) {
			return true
		}
	}
	return false
}

func firstMD(ctx context.Context, key string) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
