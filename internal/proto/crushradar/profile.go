package crushradar

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ProfileService_GetMyProfile_FullMethodName    = "/crushradar.ProfileService/GetMyProfile"
	ProfileService_UpdateMyProfile_FullMethodName = "/crushradar.ProfileService/UpdateMyProfile"
	ProfileService_UploadAvatar_FullMethodName    = "/crushradar.ProfileService/UploadAvatar"
	ProfileService_RemoveAvatar_FullMethodName    = "/crushradar.ProfileService/RemoveAvatar"
	ProfileService_GetSession_FullMethodName      = "/crushradar.ProfileService/GetSession"
)

// Profile is the owner's full profile.
type Profile struct {
	IdentityKey    string `json:"identity_key"`
	Email          string `json:"email,omitempty"`
	Name           string `json:"name"`
	AvatarUrl      string `json:"avatar_url,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Class          string `json:"class,omitempty"`
	Batch          string `json:"batch,omitempty"`
	HintsRemaining int32  `json:"hints_remaining"`
}

type GetMyProfileRequest struct{}

type ProfileResponse struct {
	Profile *Profile `json:"profile"`
	// Created is set on the first visit, when the profile was just made.
	Created bool `json:"created,omitempty"`
}

func (x *ProfileResponse) GetProfile() *Profile {
	if x == nil {
		return nil
	}
	return x.Profile
}

// UpdateMyProfileRequest is a partial update; absent fields are unchanged.
type UpdateMyProfileRequest struct {
	Name   *string `json:"name,omitempty"`
	Gender *string `json:"gender,omitempty"`
	Class  *string `json:"class,omitempty"`
	Batch  *string `json:"batch,omitempty"`
}

type UploadAvatarRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

type RemoveAvatarRequest struct{}

type GetSessionRequest struct{}

type SessionView struct {
	IdentityKey string `json:"identity_key"`
	DisplayName string `json:"display_name"`
	AvatarUrl   string `json:"avatar_url,omitempty"`
}

// ProfileServiceServer is the server API for ProfileService.
type ProfileServiceServer interface {
	GetMyProfile(context.Context, *GetMyProfileRequest) (*ProfileResponse, error)
	UpdateMyProfile(context.Context, *UpdateMyProfileRequest) (*ProfileResponse, error)
	UploadAvatar(context.Context, *UploadAvatarRequest) (*ProfileResponse, error)
	RemoveAvatar(context.Context, *RemoveAvatarRequest) (*ProfileResponse, error)
	GetSession(context.Context, *GetSessionRequest) (*SessionView, error)
}

type UnimplementedProfileServiceServer struct{}

func (UnimplementedProfileServiceServer) GetMyProfile(context.Context, *GetMyProfileRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetMyProfile not implemented")
}
func (UnimplementedProfileServiceServer) UpdateMyProfile(context.Context, *UpdateMyProfileRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateMyProfile not implemented")
}
func (UnimplementedProfileServiceServer) UploadAvatar(context.Context, *UploadAvatarRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UploadAvatar not implemented")
}
func (UnimplementedProfileServiceServer) RemoveAvatar(context.Context, *RemoveAvatarRequest) (*ProfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RemoveAvatar not implemented")
}
func (UnimplementedProfileServiceServer) GetSession(context.Context, *GetSessionRequest) (*SessionView, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSession not implemented")
}

func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileService_ServiceDesc, srv)
}

var ProfileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "crushradar.ProfileService",
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetMyProfile",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, ProfileService_GetMyProfile_FullMethodName,
					func(srv any, ctx context.Context, req *GetMyProfileRequest) (any, error) {
						return srv.(ProfileServiceServer).GetMyProfile(ctx, req)
					})
			},
		},
		{
			MethodName: "UpdateMyProfile",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, ProfileService_UpdateMyProfile_FullMethodName,
					func(srv any, ctx context.Context, req *UpdateMyProfileRequest) (any, error) {
						return srv.(ProfileServiceServer).UpdateMyProfile(ctx, req)
					})
			},
		},
		{
			MethodName: "UploadAvatar",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, ProfileService_UploadAvatar_FullMethodName,
					func(srv any, ctx context.Context, req *UploadAvatarRequest) (any, error) {
						return srv.(ProfileServiceServer).UploadAvatar(ctx, req)
					})
			},
		},
		{
			MethodName: "RemoveAvatar",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, ProfileService_RemoveAvatar_FullMethodName,
					func(srv any, ctx context.Context, req *RemoveAvatarRequest) (any, error) {
						return srv.(ProfileServiceServer).RemoveAvatar(ctx, req)
					})
			},
		},
		{
			MethodName: "GetSession",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, ProfileService_GetSession_FullMethodName,
					func(srv any, ctx context.Context, req *GetSessionRequest) (any, error) {
						return srv.(ProfileServiceServer).GetSession(ctx, req)
					})
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crushradar/profile",
}

// ProfileServiceClient is the client API for ProfileService.
type ProfileServiceClient interface {
	GetMyProfile(ctx context.Context, in *GetMyProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
	UpdateMyProfile(ctx context.Context, in *UpdateMyProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
	UploadAvatar(ctx context.Context, in *UploadAvatarRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
	RemoveAvatar(ctx context.Context, in *RemoveAvatarRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
	GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*SessionView, error)
}

type profileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) ProfileServiceClient {
	return &profileServiceClient{cc}
}

func (c *profileServiceClient) GetMyProfile(ctx context.Context, in *GetMyProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	out := new(ProfileResponse)
	if err := invoke(ctx, c.cc, ProfileService_GetMyProfile_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) UpdateMyProfile(ctx context.Context, in *UpdateMyProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	out := new(ProfileResponse)
	if err := invoke(ctx, c.cc, ProfileService_UpdateMyProfile_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) UploadAvatar(ctx context.Context, in *UploadAvatarRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	out := new(ProfileResponse)
	if err := invoke(ctx, c.cc, ProfileService_UploadAvatar_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) RemoveAvatar(ctx context.Context, in *RemoveAvatarRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	out := new(ProfileResponse)
	if err := invoke(ctx, c.cc, ProfileService_RemoveAvatar_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *profileServiceClient) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*SessionView, error) {
	out := new(SessionView)
	if err := invoke(ctx, c.cc, ProfileService_GetSession_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
