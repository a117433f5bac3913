package handler

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	pkgerrors "github.com/honeynil/nft-marketplace/pkg/errors"
)

const maxBodyBytes = 1 << 20

// ServeHTTP adapts a net/http request to the invocation event and writes the
// handler's response back.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}

	req := &Request{
		HTTPMethod:            r.Method,
		Headers:               firstValues(r.Header),
		QueryStringParameters: firstValues(r.URL.Query()),
		RequestContext:        RequestContext{RequestID: requestID},
	}

	var resp *Response
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		resp = h.writeError(r.Context(), pkgerrors.Wrap(pkgerrors.KindValidation, pkgerrors.ErrInvalidBody.Message, err))
	} else {
		req.Body = string(body)
		resp = h.Handle(r.Context(), req)
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
