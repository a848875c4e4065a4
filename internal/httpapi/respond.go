package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/crush-radar/internal/errors"
	"github.com/oggyb/crush-radar/internal/logger"
)

const maxJSONBody = 64 << 10

// errorBody is the JSON error envelope. Code carries the same reason tag
// as the gRPC ErrorInfo detail.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err, which is usually a status error from a service.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	st, ok := status.FromError(err)
	if !ok {
		st, _ = status.FromError(svcErr.Map(err))
	}
	reason := svcErr.Reason(st.Err())
	if reason == "" {
		reason = svcErr.ReasonInternal
	}

	code := svcErr.HTTPStatus(st.Code())
	if code >= http.StatusInternalServerError {
		logger.From(r.Context(), nil).Warn("request failed", "path", r.URL.Path, "reason", reason, "err", err)
	}
	writeJSON(w, code, errorBody{Code: reason, Message: st.Message()})
}

// decodeStrict decodes a JSON body, rejecting unknown fields and trailing data.
// An empty body decodes to the zero value.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return svcErr.InvalidArgument("malformed JSON body")
	}
	if dec.More() {
		return svcErr.InvalidArgument("unexpected data after JSON body")
	}
	return nil
}
