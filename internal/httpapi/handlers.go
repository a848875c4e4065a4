package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	svcErr "github.com/oggyb/crush-radar/internal/errors"
	"github.com/oggyb/crush-radar/internal/profile"
	pb "github.com/oggyb/crush-radar/internal/proto/crushradar"
)

// avatarField is the multipart form field carrying the image.
const avatarField = "avatar"

func (h *Handlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in pb.SignUpRequest
	if err := decodeStrict(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.auth.SignUp(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var in pb.SignInRequest
	if err := decodeStrict(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.auth.SignIn(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.appCtx.Auth.SignOut(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeError(w, r, svcErr.Map(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) WhoAmI(w http.ResponseWriter, r *http.Request) {
	resp, err := h.auth.WhoAmI(r.Context(), &pb.WhoAmIRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := h.profiles.GetMyProfile(r.Context(), &pb.GetMyProfileRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusOK
	if resp.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, resp)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in pb.UpdateMyProfileRequest
	if err := decodeStrict(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	resp, err := h.profiles.UpdateMyProfile(r.Context(), &in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// UploadAvatar accepts a multipart form with the image in the "avatar" field.
func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	limit := h.appCtx.Config.Blob.MaxAvatarBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBody)

	file, header, err := r.FormFile(avatarField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, svcErr.Map(fmt.Errorf("%w: larger than %d bytes", profile.ErrInvalidAvatar, limit)))
			return
		}
		writeError(w, r, svcErr.InvalidArgument("multipart field \"avatar\" is required"))
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(file, limit+1)); err != nil {
		writeError(w, r, svcErr.Map(fmt.Errorf("%w: %v", profile.ErrInvalidAvatar, err)))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	resp, err := h.profiles.UploadAvatar(r.Context(), &pb.UploadAvatarRequest{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        buf.Bytes(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) RemoveAvatar(w http.ResponseWriter, r *http.Request) {
	resp, err := h.profiles.RemoveAvatar(r.Context(), &pb.RemoveAvatarRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Session(w http.ResponseWriter, r *http.Request) {
	resp, err := h.profiles.GetSession(r.Context(), &pb.GetSessionRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := &pb.ListCandidatesRequest{
		Query:     q.Get("q"),
		Name:      q.Get("name"),
		Class:     q.Get("class"),
		Batch:     q.Get("batch"),
		PageToken: q.Get("page_token"),
	}
	if s := q.Get("page_size"); s != "" {
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil || n < 0 {
			writeError(w, r, svcErr.InvalidArgument("page_size must be a non-negative integer"))
			return
		}
		req.PageSize = int32(n)
	}

	resp, err := h.crushes.ListCandidates(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ToggleCrush(w http.ResponseWriter, r *http.Request) {
	resp, err := h.crushes.ToggleCrush(r.Context(), &pb.ToggleCrushRequest{TargetIdentityKey: chi.URLParam(r, "target")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) CountCrushes(w http.ResponseWriter, r *http.Request) {
	resp, err := h.crushes.CountCrushes(r.Context(), &pb.CountCrushesRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ListMatches(w http.ResponseWriter, r *http.Request) {
	resp, err := h.crushes.ListMatches(r.Context(), &pb.ListMatchesRequest{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) Livez(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Healthz reports ready only when both MySQL and Redis answer.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"db": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := h.appCtx.DB.DB(); err != nil {
		checks["db"], healthy = err.Error(), false
	} else if err := sqlDB.PingContext(ctx); err != nil {
		checks["db"], healthy = err.Error(), false
	}
	if err := h.appCtx.RedisCache.Ping(ctx); err != nil {
		checks["redis"], healthy = err.Error(), false
	}

	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, checks)
}
