package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/domain"
	"github.com/andresuchdata/pnl-dashboard/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

var linkSchemes = map[string]bool{"http": true, "https": true, "s3": true, "gdrive": true}

type LinkService struct {
	repo  repository.LinkRepository
	cache cache.LinkCache
}

func NewLinkService(repo repository.LinkRepository, cacheImpl cache.LinkCache) *LinkService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopLinkCache()
	}
	return &LinkService{repo: repo, cache: cacheImpl}
}

func (s *LinkService) List(ctx context.Context) ([]domain.Link, error) {
	if links, ok, err := s.cache.GetLinks(ctx); err == nil && ok {
		return links, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("links: cache get failed")
	}

	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetLinks(ctx, links); err != nil {
		log.Warn().Err(err).Msg("links: cache set failed")
	}
	return links, nil
}

func (s *LinkService) Get(ctx context.Context, id string) (*domain.Link, error) {
	return s.repo.GetLink(ctx, id)
}

func (s *LinkService) Create(ctx context.Context, name, rawURL string) (*domain.Link, error) {
	link, err := newLink("", name, rawURL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return link, nil
}

func (s *LinkService) Update(ctx context.Context, id, name, rawURL string) (*domain.Link, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	link, err := newLink(id, name, rawURL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return link, nil
}

func (s *LinkService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	if err := s.repo.DeleteLink(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *LinkService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("links: cache invalidate failed")
	}
}

func newLink(id, name, rawURL string) (*domain.Link, error) {
	name, rawURL = strings.TrimSpace(name), strings.TrimSpace(rawURL)
	if name == "" || rawURL == "" {
		return nil, fmt.Errorf("%w: name and url are required", ErrInvalidInput)
	}
	u, err := url.Parse(rawURL)
	if err != nil || !linkSchemes[strings.ToLower(u.Scheme)] || u.Host == "" {
		return nil, fmt.Errorf("%w: url must be http(s), s3://bucket/key or gdrive://id", ErrInvalidInput)
	}
	return &domain.Link{ID: id, Name: name, URL: rawURL}, nil
}
