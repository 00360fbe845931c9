package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yashgautam99/jewellry/internal/cart/cache"
	"github.com/yashgautam99/jewellry/internal/cart/repository"
	"github.com/yashgautam99/jewellry/internal/domain"
)

// Service is the cart store. The repository is the source of truth; the cache
// is a read accelerator that gets invalidated on every mutation.
type Service struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(repo repository.CartRepository, cache cache.CartCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	// Use singleflight so concurrent cache misses for the same cart hit the
	// repository once
	v, err, _ := s.sfg.Do(cartID, func() (interface{}, error) {
		cached, err := s.cache.Get(ctx, cartID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cart cache get error: %v", err) // log cache error but continue
		}

		loaded, errGet := s.repo.GetCart(ctx, cartID)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			// a cart that was never written is just empty
			return &domain.Cart{
				CartID:    cartID,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// fill the cache off the request path
		go func() {
			if errSet := s.cache.Set(context.Background(), cartID, loaded); errSet != nil {
				log.Printf("cart cache set error: %v", errSet)
			}
		}()

		return loaded, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddLine merges the line into the cart and persists it. A line whose
// (variant, size, material) key already exists gets its quantity incremented.
func (s *Service) AddLine(ctx context.Context, cartID string, line domain.CartLine) (*domain.Cart, error) {
	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now()
	}

	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := cart.AddLine(line); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("cart upsert error: %v", err)
		return nil, err
	}

	s.invalidateCache(cartID)
	return cart, nil
}

// UpdateQuantity sets the quantity on the matching line; zero or less removes
// the line.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, variantID string, quantity int, size, material string) (*domain.Cart, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.UpdateQuantity(variantID, quantity, size, material)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("cart upsert error: %v", err)
		return nil, err
	}

	s.invalidateCache(cartID)
	return cart, nil
}

func (s *Service) RemoveLine(ctx context.Context, cartID, variantID, size, material string) (*domain.Cart, error) {
	cart, err := s.load(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.RemoveLine(variantID, size, material)

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("cart upsert error: %v", err)
		return nil, err
	}

	s.invalidateCache(cartID)
	return cart, nil
}

// Clear drops the whole cart. Called by checkout after a confirmed order, so
// a cart that is already gone is not an error.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	err := s.repo.DeleteCart(ctx, cartID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("cart delete error: %v", err)
		return err
	}

	s.invalidateCache(cartID)
	return nil
}

func (s *Service) load(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, cartID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now()
		return &domain.Cart{CartID: cartID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) invalidateCache(cartID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, cartID); err != nil {
		log.Printf("cart cache invalidate error: %v", err)
	}
}
