package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/honeynil/nft-marketplace/internal/infrastructure/kafka"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/observability"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/redis"
	"github.com/honeynil/nft-marketplace/internal/models"
	"github.com/honeynil/nft-marketplace/internal/repository"
	pkgerrors "github.com/honeynil/nft-marketplace/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=marketplace_service.go -destination=mocks/marketplace_service_mock.go -package=mocks

type MarketplaceService interface {
	// ListNFTs returns NFTs ordered by id. An empty rarity or "all" disables the filter.
	ListNFTs(ctx context.Context, rarity string) ([]models.NFT, error)
	GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	GetStats(ctx context.Context) (*models.Stats, error)
	Purchase(ctx context.Context, req models.PurchaseRequest) (*models.Transaction, error)
	CreateNFT(ctx context.Context, req models.CreateNFTRequest) (*models.NFT, error)
}

// Cached entries live under "<family>:<generation>:<name>". Invalidation bumps
// the family generation, so a value read from the database before a write is
// stored under a retired generation and never served.
const (
	nftsCacheFamily     = "nfts"
	statsCacheFamily    = "stats"
	generationSuffix    = ":generation"
	idempotencyKeyTTL   = 24 * time.Hour
	idempotencyKeySpace = "purchase:request:"
)

type marketplaceService struct {
	nftRepo         repository.NFTRepository
	userRepo        repository.UserRepository
	transactionRepo repository.TransactionRepository
	redisClient     redis.RedisClient
	kafkaProducer   kafka.KafkaProducer
	cacheTTL        time.Duration
}

// NewMarketplaceService wires the repositories with the optional cache and
// event producer. A nil redisClient disables caching and idempotency keys;
// a nil kafkaProducer disables events.
func NewMarketplaceService(
	nftRepo repository.NFTRepository,
	userRepo repository.UserRepository,
	transactionRepo repository.TransactionRepository,
	redisClient redis.RedisClient,
	kafkaProducer kafka.KafkaProducer,
	cacheTTL time.Duration,
) *marketplaceService {
	return &marketplaceService{
		nftRepo:         nftRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		redisClient:     redisClient,
		kafkaProducer:   kafkaProducer,
		cacheTTL:        cacheTTL,
	}
}

func (s *marketplaceService) ListNFTs(ctx context.Context, rarity string) ([]models.NFT, error) {
	ctx, span := otel.Tracer("marketplace-service").Start(ctx, "ListNFTs")
	defer span.End()
	span.SetAttributes(attribute.String("rarity", rarity))

	filter := models.Rarity(rarity)
	if filter == models.RarityAll {
		filter = ""
	}

	// Unknown rarities are never cached; they always hit the database and match nothing.
	cacheKey := ""
	if filter == "" {
		cacheKey, _ = s.cacheKey(ctx, nftsCacheFamily, string(models.RarityAll))
	} else if filter.Valid() {
		cacheKey, _ = s.cacheKey(ctx, nftsCacheFamily, string(filter))
	}

	var nfts []models.NFT
	if cacheKey != "" && s.cacheGet(ctx, cacheKey, nftsCacheFamily, &nfts) {
		return nfts, nil
	}

	nfts, err := s.nftRepo.List(ctx, filter)
	if err != nil {
		recordError(span, err, "list nfts failed")
		observability.WithContext(ctx).Error("failed to list nfts", "rarity", rarity, "error", err)
		return nil, err
	}

	if cacheKey != "" {
		s.cacheSet(ctx, cacheKey, nfts)
	}
	return nfts, nil
}

func (s *marketplaceService) GetUserProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	ctx, span := otel.Tracer("marketplace-service").Start(ctx, "GetUserProfile")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userID))

	if userID <= 0 {
		span.SetStatus(codes.Error, "invalid user id")
		return nil, pkgerrors.Validation("userId must be a positive integer")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		recordError(span, err, "get user failed")
		if !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
			observability.WithContext(ctx).Error("failed to get user", "user_id", userID, "error", err)
		}
		return nil, err
	}

	owned, err := s.userRepo.ListOwned(ctx, userID)
	if err != nil {
		recordError(span, err, "list owned nfts failed")
		observability.WithContext(ctx).Error("failed to list owned nfts", "user_id", userID, "error", err)
		return nil, err
	}

	history, err := s.transactionRepo.ListByUser(ctx, userID)
	if err != nil {
		recordError(span, err, "list transactions failed")
		observability.WithContext(ctx).Error("failed to list transactions", "user_id", userID, "error", err)
		return nil, err
	}

	return &models.UserProfile{User: user, OwnedNFTs: owned, Transactions: history}, nil
}

func (s *marketplaceService) GetStats(ctx context.Context) (*models.Stats, error) {
	ctx, span := otel.Tracer("marketplace-service").Start(ctx, "GetStats")
	defer span.End()

	cacheKey, cacheable := s.cacheKey(ctx, statsCacheFamily, "totals")
	var stats models.Stats
	if cacheable && s.cacheGet(ctx, cacheKey, statsCacheFamily, &stats) {
		return &stats, nil
	}

	fresh, err := s.transactionRepo.GetStats(ctx)
	if err != nil {
		recordError(span, err, "get stats failed")
		observability.WithContext(ctx).Error("failed to get stats", "error", err)
		return nil, err
	}

	if cacheable {
		s.cacheSet(ctx, cacheKey, fresh)
	}
	return fresh, nil
}

func (s *marketplaceService) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.Transaction, error) {
	ctx, span := otel.Tracer("marketplace-service").Start(ctx, "Purchase")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", req.UserID), attribute.Int64("nft_id", req.NFTID))
	logger := observability.WithContext(ctx, "user_id", req.UserID, "nft_id", req.NFTID)

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid purchase request")
		return nil, pkgerrors.Validation("%s", models.DescribeValidation(err))
	}

	requestKey, err := s.claimRequest(ctx, req.IdempotencyKey)
	if err != nil {
		recordError(span, err, "request already processed")
		logger.Warn("duplicate purchase request", "idempotency_key", req.IdempotencyKey)
		return nil, err
	}

	tx, err := s.transactionRepo.Purchase(ctx, req.UserID, req.NFTID)
	if err != nil {
		s.releaseRequest(ctx, requestKey)
		recordError(span, err, "purchase failed")
		if pkgerrors.KindOf(err) == pkgerrors.KindInternal {
			logger.Error("purchase failed", "error", err)
		} else {
			logger.Info("purchase rejected", "reason", err.Error())
		}
		return nil, err
	}

	s.invalidate(ctx, statsCacheFamily)
	s.publish(ctx, kafka.Event{
		Type:          kafka.EventNFTPurchased,
		TransactionID: tx.ID,
		UserID:        tx.ToUserID,
		NFTID:         tx.NFTID,
		Amount:        tx.Amount,
		OccurredAt:    tx.CreatedAt,
	})

	logger.Info("nft purchased", "transaction_id", tx.ID, "amount", tx.Amount)
	return tx, nil
}

func (s *marketplaceService) CreateNFT(ctx context.Context, req models.CreateNFTRequest) (*models.NFT, error) {
	ctx, span := otel.Tracer("marketplace-service").Start(ctx, "CreateNFT")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid create-nft request")
		return nil, pkgerrors.Validation("%s", models.DescribeValidation(err))
	}
	span.SetAttributes(attribute.String("rarity", string(req.Rarity)))

	nft := req.NFT()
	if err := s.nftRepo.Create(ctx, nft); err != nil {
		recordError(span, err, "create nft failed")
		observability.WithContext(ctx).Error("failed to create nft", "name", req.Name, "error", err)
		return nil, err
	}

	s.invalidate(ctx, nftsCacheFamily, statsCacheFamily)
	s.publish(ctx, kafka.Event{
		Type:       kafka.EventNFTMinted,
		NFTID:      nft.ID,
		Rarity:     string(nft.Rarity),
		Amount:     nft.Price,
		OccurredAt: time.Now().UTC(),
	})

	observability.WithContext(ctx).Info("nft minted", "nft_id", nft.ID, "rarity", nft.Rarity, "price", nft.Price)
	return nft, nil
}

// claimRequest reserves an idempotency key. It returns the Redis key to
// release on failure, or "" when no key was claimed.
func (s *marketplaceService) claimRequest(ctx context.Context, idempotencyKey string) (string, error) {
	if idempotencyKey == "" || s.redisClient == nil {
		return "", nil
	}

	requestKey := idempotencyKeySpace + idempotencyKey
	ok, err := s.redisClient.SetNX(ctx, requestKey, "pending", idempotencyKeyTTL)
	if err != nil {
		observability.WithContext(ctx).Error("failed to claim idempotency key, continuing without it", "key", requestKey, "error", err)
		return "", nil
	}
	if !ok {
		return "", pkgerrors.ErrRequestAlreadyProcessed
	}
	return requestKey, nil
}

func (s *marketplaceService) releaseRequest(ctx context.Context, requestKey string) {
	if requestKey == "" {
		return
	}
	if err := s.redisClient.Del(ctx, requestKey); err != nil {
		observability.WithContext(ctx).Error("failed to release idempotency key", "key", requestKey, "error", err)
	}
}

// cacheKey returns the key of name under the current generation of family.
// It returns "" and false when there is no cache or the generation cannot be
// read; the caller then neither reads nor writes the cache.
func (s *marketplaceService) cacheKey(ctx context.Context, family, name string) (string, bool) {
	if s.redisClient == nil {
		return "", false
	}

	generation, err := s.redisClient.Get(ctx, family+generationSuffix)
	switch {
	case stderrors.Is(err, redis.ErrKeyNotFound):
		generation = "0"
	case err != nil:
		observability.CacheRequests.WithLabelValues(family, "error").Inc()
		observability.WithContext(ctx).Error("failed to read cache generation", "family", family, "error", err)
		return "", false
	}
	return family + ":" + generation + ":" + name, true
}

func (s *marketplaceService) cacheGet(ctx context.Context, key, family string, dst any) bool {
	if s.redisClient == nil {
		return false
	}

	raw, err := s.redisClient.Get(ctx, key)
	if stderrors.Is(err, redis.ErrKeyNotFound) {
		observability.CacheRequests.WithLabelValues(family, "miss").Inc()
		return false
	}
	if err != nil {
		observability.CacheRequests.WithLabelValues(family, "error").Inc()
		observability.WithContext(ctx).Error("failed to read cache", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		observability.CacheRequests.WithLabelValues(family, "error").Inc()
		observability.WithContext(ctx).Error("failed to decode cached value", "key", key, "error", err)
		return false
	}

	observability.CacheRequests.WithLabelValues(family, "hit").Inc()
	return true
}

func (s *marketplaceService) cacheSet(ctx context.Context, key string, value any) {
	if s.redisClient == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		observability.WithContext(ctx).Error("failed to encode cache value", "key", key, "error", err)
		return
	}
	if err := s.redisClient.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		observability.WithContext(ctx).Error("failed to write cache", "key", key, "error", err)
	}
}

// invalidate retires every cached entry of the given families. Entries of
// older generations are left to expire with the cache TTL.
func (s *marketplaceService) invalidate(ctx context.Context, families ...string) {
	if s.redisClient == nil {
		return
	}
	for _, family := range families {
		if _, err := s.redisClient.Incr(ctx, family+generationSuffix); err != nil {
			observability.WithContext(ctx).Error("failed to invalidate cache", "family", family, "error", err)
		}
	}
}

// publish sends event after the change is committed. Failures are logged only.
func (s *marketplaceService) publish(ctx context.Context, event kafka.Event) {
	if s.kafkaProducer == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		observability.WithContext(ctx).Error("failed to marshal Kafka event", "type", event.Type, "error", err)
		return
	}
	if err := s.kafkaProducer.Send(ctx, strconv.FormatInt(event.NFTID, 10), payload); err != nil {
		observability.WithContext(ctx).Error("failed to publish event", "type", event.Type, "nft_id", event.NFTID, "error", err)
	}
}

func recordError(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf("%s: %s", msg, pkgerrors.KindOf(err)))
}
