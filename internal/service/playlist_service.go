package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/domain"
	"github.com/iconidentify/mediagrab/internal/platform"
	"github.com/iconidentify/mediagrab/internal/repository"
)

// PlaylistService manages paginated playlist browsing. Sessions are kept
// per owner; starting a new browse replaces the previous one.
type PlaylistService struct {
	resolver    *platform.Resolver
	sessionRepo repository.SessionRepository
	registry    repository.URLRegistry
	cfg         config.DownloadConfig
	logger      *slog.Logger
}

// NewPlaylistService creates a new playlist service.
func NewPlaylistService(
	resolver *platform.Resolver,
	sessionRepo repository.SessionRepository,
	registry repository.URLRegistry,
	cfg config.DownloadConfig,
	logger *slog.Logger,
) *PlaylistService {
	return &PlaylistService{
		resolver:    resolver,
		sessionRepo: sessionRepo,
		registry:    registry,
		cfg:         cfg,
		logger:      logger,
	}
}

// PageResponse is one rendered page of a playlist session.
type PageResponse struct {
	Title      string
	Platform   domain.Platform
	Page       int
	TotalPages int
	TotalItems int
	Items      []domain.PlaylistItem
	HasNext    bool
	HasPrev    bool
}

// Browse extracts a playlist shallowly and opens a session on its items.
func (s *PlaylistService) Browse(ctx context.Context, ownerID, rawURL string) (*PageResponse, error) {
	adapter, err := s.resolver.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()

	info, err := adapter.Extract(extractCtx, rawURL, platform.ExtractOptions{FlatPlaylist: true})
	if err != nil {
		return nil, err
	}

	session := domain.NewPlaylistSession(ownerID, info)
	if len(session.Items) == 0 {
		return nil, domain.ErrEmptyPlaylist
	}

	if _, err := s.registry.Register(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("register url: %w", err)
	}
	if err := s.sessionRepo.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.logger.Info("playlist session opened",
		"owner_id", ownerID,
		"platform", string(session.Platform),
		"items", len(session.Items),
	)

	return s.renderPage(session, 0)
}

// Page returns the requested 0-indexed page of the owner's session.
func (s *PlaylistService) Page(ctx context.Context, ownerID string, page int) (*PageResponse, error) {
	session, err := s.sessionRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	session.Page = page
	return s.renderPage(session, page)
}

// Item resolves one playlist item by its absolute index.
func (s *PlaylistService) Item(ctx context.Context, ownerID string, index int) (domain.PlaylistItem, error) {
	session, err := s.sessionRepo.Get(ctx, ownerID)
	if err != nil {
		return domain.PlaylistItem{}, err
	}

	item, ok := session.Item(index)
	if !ok {
		return domain.PlaylistItem{}, domain.ErrInvalidPlaylistItem
	}
	return item, nil
}

// Items returns all items of the owner's session, for bulk downloads.
func (s *PlaylistService) Items(ctx context.Context, ownerID string) ([]domain.PlaylistItem, error) {
	session, err := s.sessionRepo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return session.Items, nil
}

// Close discards the owner's session.
func (s *PlaylistService) Close(ctx context.Context, ownerID string) error {
	return s.sessionRepo.Delete(ctx, ownerID)
}

func (s *PlaylistService) renderPage(session *domain.PlaylistSession, page int) (*PageResponse, error) {
	items, hasNext, hasPrev := session.PageItems(page, s.cfg.PageSize)

	return &PageResponse{
		Title:      session.Title,
		Platform:   session.Platform,
		Page:       page,
		TotalPages: session.TotalPages(s.cfg.PageSize),
		TotalItems: len(session.Items),
		Items:      items,
		HasNext:    hasNext,
		HasPrev:    hasPrev,
	}, nil
}
