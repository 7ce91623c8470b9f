package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"agendly/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService caches tenant-scoped reference data. The host-to-slug
// resolution itself is pure and never cached; only the slug-to-tenant record
// lookup is, and writers invalidate on update.
type CacheService interface {
	// Tenant record caching (keyed by slug)
	GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	SetTenantBySlug(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error
	DeleteTenantBySlug(ctx context.Context, slug string) error

	// Offering caching
	GetOffering(ctx context.Context, tenantID, offeringID uuid.UUID) (*models.Offering, error)
	SetOffering(ctx context.Context, tenantID uuid.UUID, offering *models.Offering, ttl time.Duration) error
	DeleteOffering(ctx context.Context, tenantID, offeringID uuid.UUID) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v", pingErr)
	}
	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetTenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	key := fmt.Sprintf("agendly:tenant:slug:%s", slug)
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var tenant models.Tenant
	if err := json.Unmarshal(data, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *redisCacheService) SetTenantBySlug(ctx context.Context, tenant *models.Tenant, ttl time.Duration) error {
	key := fmt.Sprintf("agendly:tenant:slug:%s", tenant.Slug)
	data, err := json.Marshal(tenant)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteTenantBySlug(ctx context.Context, slug string) error {
	key := fmt.Sprintf("agendly:tenant:slug:%s", slug)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetOffering(ctx context.Context, tenantID, offeringID uuid.UUID) (*models.Offering, error) {
	key := fmt.Sprintf("agendly:offering:%s:%s", tenantID.String(), offeringID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var offering models.Offering
	if err := json.Unmarshal(data, &offering); err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *redisCacheService) SetOffering(ctx context.Context, tenantID uuid.UUID, offering *models.Offering, ttl time.Duration) error {
	key := fmt.Sprintf("agendly:offering:%s:%s", tenantID.String(), offering.ID.String())
	data, err := json.Marshal(offering)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteOffering(ctx context.Context, tenantID, offeringID uuid.UUID) error {
	key := fmt.Sprintf("agendly:offering:%s:%s", tenantID.String(), offeringID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Get(ctx, "agendly:ratelimit:"+key).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	fullKey := "agendly:ratelimit:" + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return r.client.Expire(ctx, fullKey, window).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return value, err
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
