package usecase

import (
	"context"
	"log"
	"strings"

	"github.com/shopscout/backend/internal/domain"
)

// ProductService routes a search to the source registered for a platform
type ProductService struct {
	fetcher domain.PageFetcher
	sources map[domain.Platform]domain.Source
}

// NewProductService creates a product service. A later source replaces an
// earlier one registered for the same platform.
func NewProductService(fetcher domain.PageFetcher, sources ...domain.Source) *ProductService {
	registry := make(map[domain.Platform]domain.Source, len(sources))
	for _, src := range sources {
		registry[src.Platform()] = src
	}

	return &ProductService{
		fetcher: fetcher,
		sources: registry,
	}
}

// SearchProducts fetches the platform's results page for query and extracts it.
// Flow: resolve source -> build URL -> fetch -> extract
//
// Only an unknown platform is reported as an error. Fetch failures are logged
// and produce an empty list.
func (s *ProductService) SearchProducts(ctx context.Context, platform, query string) ([]domain.ProductRecord, error) {
	p, err := domain.ParsePlatform(platform)
	if err != nil {
		return nil, err
	}

	src, ok := s.sources[p]
	if !ok {
		return nil, domain.ErrInvalidPlatform
	}

	if strings.TrimSpace(query) == "" {
		return []domain.ProductRecord{}, nil
	}

	url := src.SearchURL(query)
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("[ProductService] %s search for %q failed: %v", p.Tag(), query, err)
		return []domain.ProductRecord{}, nil
	}

	records := src.Extract(body)
	if records == nil {
		records = []domain.ProductRecord{}
	}

	log.Printf("[ProductService] %s search for %q returned %d products", p.Tag(), query, len(records))
	return records, nil
}

// Platforms lists the registered platforms in sorted order
func (s *ProductService) Platforms() []domain.Platform {
	platforms := make([]domain.Platform, 0, len(s.sources))
	for _, p := range domain.SupportedPlatforms() {
		if _, ok := s.sources[p]; ok {
			platforms = append(platforms, p)
		}
	}
	return platforms
}
