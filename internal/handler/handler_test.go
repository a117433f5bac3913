package handler_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/honeynil/nft-marketplace/internal/handler"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/auth"
	"github.com/honeynil/nft-marketplace/internal/models"
	servicemocks "github.com/honeynil/nft-marketplace/internal/services/mocks"
	pkgerrors "github.com/honeynil/nft-marketplace/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) (*handler.Handler, *servicemocks.MockMarketplaceService) {
	ctrl := gomock.NewController(t)
	svc := servicemocks.NewMockMarketplaceService(ctrl)
	return handler.NewHandler(svc), svc
}

func assertCORS(t *testing.T, headers map[string]string) {
	t.Helper()
	assert.Equal(t, "application/json", headers["Content-Type"])
	assert.Equal(t, "*", headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type, X-User-Id", headers["Access-Control-Allow-Headers"])
	assert.Equal(t, "86400", headers["Access-Control-Max-Age"])
}

func TestHandle_Options(t *testing.T) {
	h, _ := newHandler(t)

	resp := h.Handle(context.Background(), &handler.Request{
		HTTPMethod:            http.MethodOptions,
		QueryStringParameters: map[string]string{"action": "purchase"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.False(t, resp.IsBase64Encoded)
	assertCORS(t, resp.Headers)
}

func TestHandle_ListNFTs(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().ListNFTs(gomock.Any(), "rare").Return([]models.NFT{
			{ID: 4, Emoji: "🚀", Name: "Rocket", Price: decimal.NewFromInt(250), Rarity: models.RarityRare, Gradient: "g"},
		}, nil)

		resp := h.Handle(ctx, &handler.Request{
			HTTPMethod:            "GET",
			QueryStringParameters: map[string]string{"action": "nfts", "rarity": "rare"},
		})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"nfts":[{"id":4,"emoji":"🚀","name":"Rocket","description":"","price":250,"rarity":"rare","gradient":"g"}]}`, resp.Body)
		assertCORS(t, resp.Headers)
	})

	t.Run("EmptyMethodDefaultsToGet", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().ListNFTs(gomock.Any(), "").Return([]models.NFT{}, nil)

		resp := h.Handle(ctx, &handler.Request{QueryStringParameters: map[string]string{"action": "nfts"}})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"nfts":[]}`, resp.Body)
	})

	t.Run("InternalErrorIsHidden", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().ListNFTs(gomock.Any(), "").Return(nil, errors.New(`pq: relation "nfts" does not exist`))

		resp := h.Handle(ctx, &handler.Request{
			HTTPMethod:            "GET",
			QueryStringParameters: map[string]string{"action": "nfts"},
			RequestContext:        handler.RequestContext{RequestID: "req-1"},
		})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL","request_id":"req-1"}`, resp.Body)
		assertCORS(t, resp.Headers)
	})
}

func TestHandle_GetUser(t *testing.T) {
	ctx := context.Background()
	acquired := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("DefaultsToUserOne", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().GetUserProfile(gomock.Any(), int64(1)).Return(&models.UserProfile{
			User: &models.User{ID: 1, Balance: decimal.NewFromInt(1000)},
			OwnedNFTs: []models.OwnedNFT{{
				NFT:        models.NFT{ID: 2, Emoji: "💎", Name: "Diamond", Price: decimal.NewFromInt(500), Rarity: models.RarityLegendary, Gradient: "g"},
				AcquiredAt: acquired,
			}},
			Transactions: []models.UserTransaction{{
				ID:        7,
				Type:      models.TypePurchase,
				Amount:    decimal.NewFromInt(500),
				CreatedAt: acquired,
				Emoji:     "💎",
				NFTName:   "Diamond",
			}},
		}, nil)

		resp := h.Handle(ctx, &handler.Request{HTTPMethod: "GET", QueryStringParameters: map[string]string{"action": "user"}})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{
			"user":{"id":1,"balance":1000},
			"owned_nfts":[{"id":2,"emoji":"💎","name":"Diamond","description":"","price":500,"rarity":"legendary","gradient":"g","acquired_at":"2024-03-01T12:00:00Z"}],
			"transactions":[{"id":7,"transaction_type":"purchase","amount":500,"created_at":"2024-03-01T12:00:00Z","emoji":"💎","nft_name":"Diamond"}]
		}`, resp.Body)
	})

	t.Run("NotFound", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().GetUserProfile(gomock.Any(), int64(42)).Return(nil, pkgerrors.ErrUserNotFound)

		resp := h.Handle(ctx, &handler.Request{HTTPMethod: "GET", QueryStringParameters: map[string]string{"action": "user", "userId": "42"}})

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":"User not found","code":"NOT_FOUND"}`, resp.Body)
	})

	t.Run("NonNumericUserID", func(t *testing.T) {
		h, _ := newHandler(t)

		resp := h.Handle(ctx, &handler.Request{HTTPMethod: "GET", QueryStringParameters: map[string]string{"action": "user", "userId": "abc"}})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"userId must be an integer","code":"VALIDATION_ERROR"}`, resp.Body)
	})
}

func TestHandle_GetStats(t *testing.T) {
	h, svc := newHandler(t)
	svc.EXPECT().GetStats(gomock.Any()).Return(&models.Stats{TotalUsers: 3, TotalNFTs: 12, TotalSales: 7, TotalTransactions: 7}, nil)

	resp := h.Handle(context.Background(), &handler.Request{HTTPMethod: "GET", QueryStringParameters: map[string]string{"action": "stats"}})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"total_users":3,"total_nfts":12,"total_sales":7,"total_transactions":7}`, resp.Body)
}

func TestHandle_Purchase(t *testing.T) {
	ctx := context.Background()
	purchase := func(body string) *handler.Request {
		return &handler.Request{
			HTTPMethod:            "POST",
			QueryStringParameters: map[string]string{"action": "purchase"},
			Body:                  body,
		}
	}

	t.Run("Success", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Purchase(gomock.Any(), models.PurchaseRequest{UserID: 1, NFTID: 2}).
			Return(&models.Transaction{ID: 9}, nil)

		resp := h.Handle(ctx, purchase(`{"userId":1,"nftId":2}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"message":"NFT purchased successfully"}`, resp.Body)
	})

	t.Run("Base64Body", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Purchase(gomock.Any(), models.PurchaseRequest{UserID: 1, NFTID: 2}).
			Return(&models.Transaction{ID: 9}, nil)

		req := purchase(base64.StdEncoding.EncodeToString([]byte(`{"userId":1,"nftId":2}`)))
		req.IsBase64Encoded = true
		resp := h.Handle(ctx, req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("IdempotencyKeyFromHeader", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Purchase(gomock.Any(), models.PurchaseRequest{UserID: 1, NFTID: 2, IdempotencyKey: "k-1"}).
			Return(nil, pkgerrors.ErrRequestAlreadyProcessed)

		req := purchase(`{"userId":1,"nftId":2}`)
		req.Headers = map[string]string{"idempotency-key": "k-1"}
		resp := h.Handle(ctx, req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.JSONEq(t, `{"error":"request already processed","code":"CONFLICT"}`, resp.Body)
	})

	t.Run("NFTNotFound", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Purchase(gomock.Any(), gomock.Any()).Return(nil, pkgerrors.ErrNFTNotFound)

		resp := h.Handle(ctx, purchase(`{"userId":1,"nftId":99}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":"NFT not found","code":"NOT_FOUND"}`, resp.Body)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Purchase(gomock.Any(), gomock.Any()).Return(nil, pkgerrors.ErrInsufficientBalance)

		resp := h.Handle(ctx, purchase(`{"userId":1,"nftId":2}`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Insufficient balance","code":"VALIDATION_ERROR"}`, resp.Body)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		h, _ := newHandler(t)

		resp := h.Handle(ctx, purchase(`{"userId":`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"invalid request body","code":"VALIDATION_ERROR"}`, resp.Body)
	})

	t.Run("TokenUserFillsMissingUserID", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().Purchase(gomock.Any(), models.PurchaseRequest{UserID: 5, NFTID: 2}).
			Return(&models.Transaction{ID: 9}, nil)

		resp := h.Handle(auth.ContextWithUserID(ctx, 5), purchase(`{"nftId":2}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("TokenUserMismatch", func(t *testing.T) {
		h, _ := newHandler(t)

		resp := h.Handle(auth.ContextWithUserID(ctx, 5), purchase(`{"userId":1,"nftId":2}`))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.JSONEq(t, `{"error":"forbidden","code":"FORBIDDEN"}`, resp.Body)
	})
}

func TestHandle_CreateNFT(t *testing.T) {
	ctx := context.Background()

	t.Run("Created", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().CreateNFT(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.CreateNFTRequest) (*models.NFT, error) {
				require.NotNil(t, req.Price)
				assert.True(t, req.Price.Equal(decimal.NewFromInt(300)))
				return &models.NFT{
					ID:       13,
					Emoji:    req.Emoji,
					Name:     req.Name,
					Price:    *req.Price,
					Rarity:   req.Rarity,
					Gradient: models.DefaultGradient,
				}, nil
			})

		resp := h.Handle(ctx, &handler.Request{
			HTTPMethod:            "POST",
			QueryStringParameters: map[string]string{"action": "create-nft"},
			Body:                  `{"emoji":"🐉","name":"Dragon","price":300,"rarity":"epic"}`,
		})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.JSONEq(t, `{"success":true,"nft":{"id":13,"emoji":"🐉","name":"Dragon","description":"","price":300,"rarity":"epic","gradient":"bg-gradient-to-br from-blue-400 to-purple-500"}}`, resp.Body)
	})

	t.Run("ValidationError", func(t *testing.T) {
		h, svc := newHandler(t)
		svc.EXPECT().CreateNFT(gomock.Any(), gomock.Any()).Return(nil, pkgerrors.Validation("name is required"))

		resp := h.Handle(ctx, &handler.Request{
			HTTPMethod:            "POST",
			QueryStringParameters: map[string]string{"action": "create-nft"},
			Body:                  `{"emoji":"🐉","price":300,"rarity":"epic"}`,
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"name is required","code":"VALIDATION_ERROR"}`, resp.Body)
	})
}

func TestHandle_UnknownRoute(t *testing.T) {
	cases := []struct {
		name   string
		method string
		action string
	}{
		{name: "unknown action", method: "GET", action: "unknown"},
		{name: "missing action", method: "GET"},
		{name: "purchase via get", method: "GET", action: "purchase"},
		{name: "nfts via post", method: "POST", action: "nfts"},
		{name: "delete", method: "DELETE", action: "nfts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newHandler(t)

			resp := h.Handle(context.Background(), &handler.Request{
				HTTPMethod:            tc.method,
				QueryStringParameters: map[string]string{"action": tc.action},
			})

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Not found","code":"NOT_FOUND"}`, resp.Body)
			assertCORS(t, resp.Headers)
		})
	}
}

func TestServeHTTP(t *testing.T) {
	h, svc := newHandler(t)
	svc.EXPECT().Purchase(gomock.Any(), models.PurchaseRequest{UserID: 1, NFTID: 2, IdempotencyKey: "abc"}).
		Return(&models.Transaction{ID: 9}, nil)

	req := httptest.NewRequest(http.MethodPost, "/?action=purchase", strings.NewReader(`{"userId":1,"nftId":2}`))
	req.Header.Set("Idempotency-Key", "abc")
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"success":true,"message":"NFT purchased successfully"}`, rec.Body.String())
}
