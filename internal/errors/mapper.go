// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/auth"
	"github.com/oggyb/crush-radar/internal/crush"
	"github.com/oggyb/crush-radar/internal/profile"
	"github.com/oggyb/crush-radar/internal/session"
	"github.com/oggyb/crush-radar/internal/utils/pagination"
)

// Domain is the ErrorInfo domain attached to every mapped status.
const Domain = "crushradar"

// Reason tags carried in google.rpc.ErrorInfo. Clients branch on these.
const (
	ReasonInvalidTarget        = "INVALID_TARGET"
	ReasonEdgeWriteFailed      = "EDGE_WRITE_FAILED"
	ReasonToggleInFlight       = "TOGGLE_IN_FLIGHT"
	ReasonMatchFetchFailed     = "MATCH_FETCH_FAILED"
	ReasonCandidateFetchFailed = "CANDIDATE_FETCH_FAILED"
	ReasonInvalidCredentials   = "INVALID_CREDENTIALS"
	ReasonInvalidToken         = "INVALID_TOKEN"
	ReasonUnauthenticated      = "UNAUTHENTICATED"
	ReasonEmailTaken           = "EMAIL_TAKEN"
	ReasonInvalidInput         = "INVALID_INPUT"
	ReasonInvalidAvatar        = "INVALID_AVATAR"
	ReasonAvatarUploadFailed   = "AVATAR_UPLOAD_FAILED"
	ReasonProfileNotFound      = "PROFILE_NOT_FOUND"
	ReasonInvalidPageToken     = "INVALID_PAGE_TOKEN"
	ReasonNotFound             = "NOT_FOUND"
	ReasonTimeout              = "TIMEOUT"
	ReasonCanceled             = "CANCELED"
	ReasonInternal             = "INTERNAL"
)

type kind struct {
	target error
	code   codes.Code
	reason string
	// detailed kinds expose err.Error(); the rest only the sentinel text,
	// so store internals never reach the caller.
	detailed bool
}

var kinds = []kind{
	{crush.ErrInvalidTarget, codes.InvalidArgument, ReasonInvalidTarget, false},
	{crush.ErrEdgeWriteFailed, codes.Unavailable, ReasonEdgeWriteFailed, false},
	{crush.ErrToggleInFlight, codes.Aborted, ReasonToggleInFlight, false},
	{crush.ErrMatchFetchFailed, codes.Unavailable, ReasonMatchFetchFailed, false},
	{crush.ErrCandidateFetchFailed, codes.Unavailable, ReasonCandidateFetchFailed, false},
	{auth.ErrInvalidCredentials, codes.Unauthenticated, ReasonInvalidCredentials, false},
	{auth.ErrInvalidToken, codes.Unauthenticated, ReasonInvalidToken, false},
	{auth.ErrEmailTaken, codes.AlreadyExists, ReasonEmailTaken, false},
	{auth.ErrInvalidInput, codes.InvalidArgument, ReasonInvalidInput, true},
	{profile.ErrInvalidInput, codes.InvalidArgument, ReasonInvalidInput, true},
	{profile.ErrInvalidAvatar, codes.InvalidArgument, ReasonInvalidAvatar, true},
	{profile.ErrAvatarUploadFailed, codes.Unavailable, ReasonAvatarUploadFailed, false},
	{profile.ErrNotFound, codes.NotFound, ReasonProfileNotFound, false},
	{session.ErrNoProfile, codes.NotFound, ReasonProfileNotFound, false},
	{pagination.ErrInvalidToken, codes.InvalidArgument, ReasonInvalidPageToken, false},
}

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
//
// Every status carries an ErrorInfo detail whose Reason identifies the kind.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code, reason, msg := Classify(err)
	return withReason(code, reason, msg)
}

// Classify returns the gRPC code, reason tag and client-safe message for err.
func Classify(err error) (codes.Code, string, string) {
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			msg := k.target.Error()
			if k.detailed {
				msg = err.Error()
			}
			return k.code, k.reason, msg
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return codes.NotFound, ReasonNotFound, "record not found"

	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded, ReasonTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return codes.Canceled, ReasonCanceled, "request was canceled"

	default:
		return codes.Internal, ReasonInternal, "internal error"
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return withReason(codes.InvalidArgument, ReasonInvalidInput, msg)
}

// Unauthenticated is returned when a call lacks a valid identity.
func Unauthenticated(msg string) error {
	return withReason(codes.Unauthenticated, ReasonUnauthenticated, msg)
}

// Reason extracts the ErrorInfo reason from a status error, or "".
func Reason(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

// HTTPStatus maps a gRPC code onto the closest HTTP status.
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument, codes.OutOfRange, codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Canceled:
		return 499 // client closed request
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func withReason(code codes.Code, reason, msg string) error {
	st := status.New(code, msg)
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: Domain})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
