package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/auth"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/observability"
	"github.com/honeynil/nft-marketplace/internal/models"
	service "github.com/honeynil/nft-marketplace/internal/services"
	pkgerrors "github.com/honeynil/nft-marketplace/pkg/errors"
	"github.com/honeynil/nft-marketplace/pkg/httpx"
)

const (
	ActionNFTs      = "nfts"
	ActionUser      = "user"
	ActionStats     = "stats"
	ActionPurchase  = "purchase"
	ActionCreateNFT = "create-nft"

	defaultUserID = "1"
)

// Request is the cloud-function invocation event.
type Request struct {
	HTTPMethod            string            `json:"httpMethod"`
	Headers               map[string]string `json:"headers"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
	RequestContext        RequestContext    `json:"requestContext"`
}

type RequestContext struct {
	RequestID string `json:"requestId"`
}

type Response struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

type Handler struct {
	service service.MarketplaceService
}

func NewHandler(s service.MarketplaceService) *Handler {
	return &Handler{service: s}
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

type purchaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type createNFTResponse struct {
	Success bool        `json:"success"`
	NFT     *models.NFT `json:"nft"`
}

type nftsResponse struct {
	NFTs []models.NFT `json:"nfts"`
}

// Handle dispatches one invocation on method and the action query parameter.
// It never returns nil and never panics on malformed input.
func (h *Handler) Handle(ctx context.Context, req *Request) *Response {
	method := strings.ToUpper(strings.TrimSpace(req.HTTPMethod))
	if method == "" {
		method = http.MethodGet
	}

	requestID := req.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = observability.ContextWithRequestID(ctx, requestID)

	if method == http.MethodOptions {
		return respond(http.StatusOK, "")
	}

	action := req.QueryStringParameters["action"]
	observability.WithContext(ctx).Debug("handling request", "method", method, "action", action)

	switch {
	case method == http.MethodGet && action == ActionNFTs:
		return h.listNFTs(ctx, req)
	case method == http.MethodGet && action == ActionUser:
		return h.getUser(ctx, req)
	case method == http.MethodGet && action == ActionStats:
		return h.getStats(ctx)
	case method == http.MethodPost && action == ActionPurchase:
		return h.purchase(ctx, req)
	case method == http.MethodPost && action == ActionCreateNFT:
		return h.createNFT(ctx, req)
	default:
		return h.writeError(ctx, pkgerrors.ErrRouteNotFound)
	}
}

func (h *Handler) listNFTs(ctx context.Context, req *Request) *Response {
	nfts, err := h.service.ListNFTs(ctx, req.QueryStringParameters["rarity"])
	if err != nil {
		return h.writeError(ctx, err)
	}
	return h.writeJSON(ctx, http.StatusOK, nftsResponse{NFTs: nfts})
}

func (h *Handler) getUser(ctx context.Context, req *Request) *Response {
	raw, ok := req.QueryStringParameters["userId"]
	if !ok || raw == "" {
		raw = defaultUserID
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return h.writeError(ctx, pkgerrors.Validation("userId must be an integer"))
	}

	profile, err := h.service.GetUserProfile(ctx, userID)
	if err != nil {
		return h.writeError(ctx, err)
	}
	return h.writeJSON(ctx, http.StatusOK, profile)
}

func (h *Handler) getStats(ctx context.Context) *Response {
	stats, err := h.service.GetStats(ctx)
	if err != nil {
		return h.writeError(ctx, err)
	}
	return h.writeJSON(ctx, http.StatusOK, stats)
}

func (h *Handler) purchase(ctx context.Context, req *Request) *Response {
	var body models.PurchaseRequest
	if err := decodeBody(req, &body); err != nil {
		return h.writeError(ctx, err)
	}

	// An authenticated caller may only buy for itself.
	if callerID, ok := auth.UserIDFromContext(ctx); ok {
		if body.UserID == 0 {
			body.UserID = callerID
		} else if body.UserID != callerID {
			return h.writeError(ctx, pkgerrors.ErrForbidden)
		}
	}
	body.IdempotencyKey = header(req, "Idempotency-Key")

	if _, err := h.service.Purchase(ctx, body); err != nil {
		return h.writeError(ctx, err)
	}
	return h.writeJSON(ctx, http.StatusOK, purchaseResponse{Success: true, Message: "NFT purchased successfully"})
}

func (h *Handler) createNFT(ctx context.Context, req *Request) *Response {
	var body models.CreateNFTRequest
	if err := decodeBody(req, &body); err != nil {
		return h.writeError(ctx, err)
	}

	nft, err := h.service.CreateNFT(ctx, body)
	if err != nil {
		return h.writeError(ctx, err)
	}
	return h.writeJSON(ctx, http.StatusCreated, createNFTResponse{Success: true, NFT: nft})
}

// decodeBody parses the JSON body into dst. An absent body decodes as {}.
func decodeBody(req *Request, dst any) error {
	raw := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.KindValidation, pkgerrors.ErrInvalidBody.Message, err)
		}
		raw = decoded
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.KindValidation, pkgerrors.ErrInvalidBody.Message, err)
	}
	return nil
}

func header(req *Request, name string) string {
	for k, v := range req.Headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (h *Handler) writeJSON(ctx context.Context, status int, payload any) *Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return h.writeError(ctx, pkgerrors.Wrap(pkgerrors.KindInternal, "failed to encode response", err))
	}
	return respond(status, string(body))
}

func (h *Handler) writeError(ctx context.Context, err error) *Response {
	kind := pkgerrors.KindOf(err)
	resp := errorResponse{
		Error: pkgerrors.Message(err),
		Code:  string(kind),
	}

	logger := observability.WithContext(ctx)
	if kind == pkgerrors.KindInternal {
		resp.RequestID = observability.RequestID(ctx)
		logger.Error("request failed", "error", err)
	} else {
		logger.Info("request rejected", "code", kind, "error", err)
	}

	body, _ := json.Marshal(resp)
	return respond(pkgerrors.Status(kind), string(body))
}

func respond(status int, body string) *Response {
	return &Response{StatusCode: status, Headers: httpx.CORSHeaders(), Body: body}
}
