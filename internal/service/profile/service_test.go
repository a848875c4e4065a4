package profile_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/crush-radar/internal/app/apptest"
	svcErr "github.com/oggyb/crush-radar/internal/errors"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
	"github.com/oggyb/crush-radar/internal/service/profile"
)

func setupService(t *testing.T) (*profile.Service, *apptest.Env) {
	t.Helper()
	env := apptest.New(t)
	return profile.NewProfileService(env.App), env
}

func ptr(s string) *string { return &s }

// TestFirstVisitCreatesProfile checks the profile appears on first read.
func TestFirstVisitCreatesProfile(t *testing.T) {
	svc, env := setupService(t)
	ctx := apptest.Ctx(env.SignUp(t, "a@x.io"))

	resp, err := svc.GetMyProfile(ctx, &pb.GetMyProfileRequest{})
	require.NoError(t, err)
	assert.True(t, resp.Created)
	assert.Equal(t, int32(3), resp.Profile.HintsRemaining)

	resp, err = svc.GetMyProfile(ctx, &pb.GetMyProfileRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Created)
}

// TestSessionFollowsEdits checks the cached header view is refreshed
// after the name and avatar change.
func TestSessionFollowsEdits(t *testing.T) {
	svc, env := setupService(t)
	ctx := apptest.Ctx(env.SignUp(t, "a@x.io"))

	view, err := svc.GetSession(ctx, &pb.GetSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", view.DisplayName)

	_, err = svc.UpdateMyProfile(ctx, &pb.UpdateMyProfileRequest{Name: ptr("Alice"), Class: ptr("CS-A")})
	require.NoError(t, err)

	view, err = svc.GetSession(ctx, &pb.GetSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.DisplayName)
	assert.Empty(t, view.AvatarUrl)

	up, err := svc.UploadAvatar(ctx, &pb.UploadAvatarRequest{
		Filename:    "me.png",
		ContentType: "image/png",
		Data:        bytes.Repeat([]byte{7}, 64),
	})
	require.NoError(t, err)
	require.NotEmpty(t, up.Profile.AvatarUrl)

	view, err = svc.GetSession(ctx, &pb.GetSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, up.Profile.AvatarUrl, view.AvatarUrl)

	_, err = svc.RemoveAvatar(ctx, &pb.RemoveAvatarRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, env.Blobs.Len())

	view, err = svc.GetSession(ctx, &pb.GetSessionRequest{})
	require.NoError(t, err)
	assert.Empty(t, view.AvatarUrl)
}

func TestUpdateValidation(t *testing.T) {
	svc, env := setupService(t)
	ctx := apptest.Ctx(env.SignUp(t, "a@x.io"))
	_, err := svc.GetMyProfile(ctx, &pb.GetMyProfileRequest{})
	require.NoError(t, err)

	_, err = svc.UpdateMyProfile(ctx, &pb.UpdateMyProfileRequest{Gender: ptr("robot")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, svcErr.ReasonInvalidInput, svcErr.Reason(err))

	_, err = svc.UploadAvatar(ctx, &pb.UploadAvatarRequest{ContentType: "text/plain", Data: []byte("hi")})
	assert.Equal(t, svcErr.ReasonInvalidAvatar, svcErr.Reason(err))

	_, err = svc.UploadAvatar(ctx, &pb.UploadAvatarRequest{ContentType: "image/png", Data: make([]byte, 4096)})
	assert.Equal(t, svcErr.ReasonInvalidAvatar, svcErr.Reason(err))
}

func TestUpdateBeforeFirstVisit(t *testing.T) {
	svc, env := setupService(t)
	ctx := apptest.Ctx(env.SignUp(t, "a@x.io"))

	_, err := svc.UpdateMyProfile(ctx, &pb.UpdateMyProfileRequest{Name: ptr("Alice")})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, svcErr.ReasonProfileNotFound, svcErr.Reason(err))
}
