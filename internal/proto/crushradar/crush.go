package crushradar

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	CrushService_ListCandidates_FullMethodName = "/crushradar.CrushService/ListCandidates"
	CrushService_ToggleCrush_FullMethodName    = "/crushradar.CrushService/ToggleCrush"
	CrushService_ListMatches_FullMethodName    = "/crushradar.CrushService/ListMatches"
	CrushService_CountCrushes_FullMethodName   = "/crushradar.CrushService/CountCrushes"
)

// PublicProfile is what other users see.
type PublicProfile struct {
	IdentityKey string `json:"identity_key"`
	Name        string `json:"name"`
	AvatarUrl   string `json:"avatar_url,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Class       string `json:"class,omitempty"`
	Batch       string `json:"batch,omitempty"`
}

// ListCandidatesRequest filters are case-insensitive substrings. Query
// matches name, class or batch; the other fields must all match.
type ListCandidatesRequest struct {
	Query     string `json:"query,omitempty"`
	Name      string `json:"name,omitempty"`
	Class     string `json:"class,omitempty"`
	Batch     string `json:"batch,omitempty"`
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
}

func (x *ListCandidatesRequest) GetPageToken() string {
	if x == nil {
		return ""
	}
	return x.PageToken
}

type Candidate struct {
	Profile  *PublicProfile `json:"profile"`
	Selected bool           `json:"selected"`
}

type ListCandidatesResponse struct {
	Candidates    []*Candidate `json:"candidates"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

type ToggleCrushRequest struct {
	TargetIdentityKey string `json:"target_identity_key"`
}

func (x *ToggleCrushRequest) GetTargetIdentityKey() string {
	if x == nil {
		return ""
	}
	return x.TargetIdentityKey
}

type ToggleCrushResponse struct {
	// Result is "added" or "removed".
	Result   string `json:"result"`
	Selected bool   `json:"selected"`
}

type ListMatchesRequest struct{}

type Match struct {
	Counterpart *PublicProfile `json:"counterpart"`
	// Missing is set when the counterpart's profile could not be loaded.
	Missing         bool  `json:"missing,omitempty"`
	MatchedAtUnixMs int64 `json:"matched_at_unix_ms"`
}

type ListMatchesResponse struct {
	Matches []*Match `json:"matches"`
}

type CountCrushesRequest struct{}

type CountCrushesResponse struct {
	Count uint64 `json:"count"`
}

// CrushServiceServer is the server API for CrushService.
type CrushServiceServer interface {
	ListCandidates(context.Context, *ListCandidatesRequest) (*ListCandidatesResponse, error)
	ToggleCrush(context.Context, *ToggleCrushRequest) (*ToggleCrushResponse, error)
	ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error)
	CountCrushes(context.Context, *CountCrushesRequest) (*CountCrushesResponse, error)
}

type UnimplementedCrushServiceServer struct{}

func (UnimplementedCrushServiceServer) ListCandidates(context.Context, *ListCandidatesRequest) (*ListCandidatesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListCandidates not implemented")
}
func (UnimplementedCrushServiceServer) ToggleCrush(context.Context, *ToggleCrushRequest) (*ToggleCrushResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleCrush not implemented")
}
func (UnimplementedCrushServiceServer) ListMatches(context.Context, *ListMatchesRequest) (*ListMatchesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListMatches not implemented")
}
func (UnimplementedCrushServiceServer) CountCrushes(context.Context, *CountCrushesRequest) (*CountCrushesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CountCrushes not implemented")
}

func RegisterCrushServiceServer(s grpc.ServiceRegistrar, srv CrushServiceServer) {
	s.RegisterService(&CrushService_ServiceDesc, srv)
}

var CrushService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "crushradar.CrushService",
	HandlerType: (*CrushServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListCandidates",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, CrushService_ListCandidates_FullMethodName,
					func(srv any, ctx context.Context, req *ListCandidatesRequest) (any, error) {
						return srv.(CrushServiceServer).ListCandidates(ctx, req)
					})
			},
		},
		{
			MethodName: "ToggleCrush",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, CrushService_ToggleCrush_FullMethodName,
					func(srv any, ctx context.Context, req *ToggleCrushRequest) (any, error) {
						return srv.(CrushServiceServer).ToggleCrush(ctx, req)
					})
			},
		},
		{
			MethodName: "ListMatches",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, CrushService_ListMatches_FullMethodName,
					func(srv any, ctx context.Context, req *ListMatchesRequest) (any, error) {
						return srv.(CrushServiceServer).ListMatches(ctx, req)
					})
			},
		},
		{
			MethodName: "CountCrushes",
			Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
				return unary(srv, ctx, dec, ic, CrushService_CountCrushes_FullMethodName,
					func(srv any, ctx context.Context, req *CountCrushesRequest) (any, error) {
						return srv.(CrushServiceServer).CountCrushes(ctx, req)
					})
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crushradar/crush",
}

// CrushServiceClient is the client API for CrushService.
type CrushServiceClient interface {
	ListCandidates(ctx context.Context, in *ListCandidatesRequest, opts ...grpc.CallOption) (*ListCandidatesResponse, error)
	ToggleCrush(ctx context.Context, in *ToggleCrushRequest, opts ...grpc.CallOption) (*ToggleCrushResponse, error)
	ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error)
	CountCrushes(ctx context.Context, in *CountCrushesRequest, opts ...grpc.CallOption) (*CountCrushesResponse, error)
}

type crushServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCrushServiceClient(cc grpc.ClientConnInterface) CrushServiceClient {
	return &crushServiceClient{cc}
}

func (c *crushServiceClient) ListCandidates(ctx context.Context, in *ListCandidatesRequest, opts ...grpc.CallOption) (*ListCandidatesResponse, error) {
	out := new(ListCandidatesResponse)
	if err := invoke(ctx, c.cc, CrushService_ListCandidates_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *crushServiceClient) ToggleCrush(ctx context.Context, in *ToggleCrushRequest, opts ...grpc.CallOption) (*ToggleCrushResponse, error) {
	out := new(ToggleCrushResponse)
	if err := invoke(ctx, c.cc, CrushService_ToggleCrush_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *crushServiceClient) ListMatches(ctx context.Context, in *ListMatchesRequest, opts ...grpc.CallOption) (*ListMatchesResponse, error) {
	out := new(ListMatchesResponse)
	if err := invoke(ctx, c.cc, CrushService_ListMatches_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *crushServiceClient) CountCrushes(ctx context.Context, in *CountCrushesRequest, opts ...grpc.CallOption) (*CountCrushesResponse, error) {
	out := new(CountCrushesResponse)
	if err := invoke(ctx, c.cc, CrushService_CountCrushes_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
