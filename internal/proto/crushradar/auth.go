package crushradar

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	AuthService_SignUp_FullMethodName  = "/crushradar.AuthService/SignUp"
	AuthService_SignIn_FullMethodName  = "/crushradar.AuthService/SignIn"
	AuthService_SignOut_FullMethodName = "/crushradar.AuthService/SignOut"
	AuthService_WhoAmI_FullMethodName  = "/crushradar.AuthService/WhoAmI"
)

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (x *SignUpRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (x *SignInRequest) GetEmail() string {
	if x == nil {
		return ""
	}
	return x.Email
}

// SessionResponse carries a bearer token for subsequent calls.
type SessionResponse struct {
	Token         string `json:"token"`
	ExpiresAtUnix int64  `json:"expires_at_unix"`
	IdentityKey   string `json:"identity_key"`
	Email         string `json:"email"`
}

type SignOutRequest struct{}

type SignOutResponse struct{}

type WhoAmIRequest struct{}

type WhoAmIResponse struct {
	IdentityKey string `json:"identity_key"`
	Email       string `json:"email"`
}

// AuthServiceServer is the server API for AuthService.
type AuthServiceServer interface {
	SignUp(context.Context, *SignUpRequest) (*SessionResponse, error)
	SignIn(context.Context, *SignInRequest) (*SessionResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error)
}

// UnimplementedAuthServiceServer can be embedded for forward compatibility.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) SignUp(context.Context, *SignUpRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignUp not implemented")
}
func (UnimplementedAuthServiceServer) SignIn(context.Context, *SignInRequest) (*SessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignIn not implemented")
}
func (UnimplementedAuthServiceServer) SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SignOut not implemented")
}
func (UnimplementedAuthServiceServer) WhoAmI(context.Context, *WhoAmIRequest) (*WhoAmIResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WhoAmI not implemented")
}

func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "crushradar.AuthService",
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SignUp",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, AuthService_SignUp_FullMethodName,
					func(srv any, ctx context.Context, req *SignUpRequest) (any, error) {
						return srv.(AuthServiceServer).SignUp(ctx, req)
					})
			},
		},
		{
			MethodName: "SignIn",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, AuthService_SignIn_FullMethodName,
					func(srv any, ctx context.Context, req *SignInRequest) (any, error) {
						return srv.(AuthServiceServer).SignIn(ctx, req)
					})
			},
		},
		{
			MethodName: "SignOut",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, AuthService_SignOut_FullMethodName,
					func(srv any, ctx context.Context, req *SignOutRequest) (any, error) {
						return srv.(AuthServiceServer).SignOut(ctx, req)
					})
			},
		},
		{
			MethodName: "WhoAmI",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, AuthService_WhoAmI_FullMethodName,
					func(srv any, ctx context.Context, req *WhoAmIRequest) (any, error) {
						return srv.(AuthServiceServer).WhoAmI(ctx, req)
					})
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crushradar/auth",
}

// AuthServiceClient is the client API for AuthService.
type AuthServiceClient interface {
	SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error)
	WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc}
}

func (c *authServiceClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	out := new(SessionResponse)
	if err := invoke(ctx, c.cc, AuthService_SignUp_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	out := new(SessionResponse)
	if err := invoke(ctx, c.cc, AuthService_SignIn_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error) {
	out := new(SignOutResponse)
	if err := invoke(ctx, c.cc, AuthService_SignOut_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *authServiceClient) WhoAmI(ctx context.Context, in *WhoAmIRequest, opts ...grpc.CallOption) (*WhoAmIResponse, error) {
	out := new(WhoAmIResponse)
	if err := invoke(ctx, c.cc, AuthService_WhoAmI_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
