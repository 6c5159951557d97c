package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dngun/backend/internal/models"
	"github.com/dngun/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// mapNoRows translates the driver's empty-result error into the service
// taxonomy.
func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DomainService is the domain registry: it owns domain records and hands out
// reads; status transitions go through the conditional writers consumed by
// the escrow ledger and the sale orchestrator.
type DomainService struct {
	domains DomainStore
	users   UserStore
	log     *zap.Logger
}

func NewDomainService(domains DomainStore, users UserStore, log *zap.Logger) *DomainService {
	return &DomainService{domains: domains, users: users, log: log}
}

// CreateListing registers a domain for sale. The seller becomes the owner of
// record and the domain starts out available.
func (s *DomainService) CreateListing(ctx context.Context, sellerID uuid.UUID, name, extension string, price float64, category string, description *string) (*models.Domain, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	extension = strings.ToLower(strings.TrimSpace(extension))

	if existing, err := s.domains.GetByNameExtension(ctx, name, extension); err == nil && existing != nil {
		return nil, fmt.Errorf("domain %s%s: %w", name, extension, ErrConflict)
	}

	d := &models.Domain{
		Name:        name,
		Extension:   extension,
		Price:       price,
		Category:    category,
		Status:      models.DomainStatusAvailable,
		SellerID:    &sellerID,
		Description: description,
	}
	if err := s.domains.Create(ctx, d); err != nil {
		return nil, err
	}

	if err := s.users.AddDomainForSale(ctx, sellerID, d.ID); err != nil {
		s.log.Warn("failed to record listing on seller profile",
			zap.String("domain_id", d.ID.String()), zap.Error(err))
	}

	return d, nil
}

// Get returns the domain and bumps its view counter. The increment is
// fire-and-forget and not part of any invariant.
func (s *DomainService) Get(ctx context.Context, id uuid.UUID) (*models.Domain, error) {
	d, err := s.domains.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := s.domains.IncrementViews(ctx, id); err == nil {
		d.Views++
	}
	return d, nil
}

func (s *DomainService) GetByName(ctx context.Context, name, extension string) (*models.Domain, error) {
	d, err := s.domains.GetByNameExtension(ctx, name, extension)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if err := s.domains.IncrementViews(ctx, d.ID); err == nil {
		d.Views++
	}
	return d, nil
}

func (s *DomainService) List(ctx context.Context, f repositories.DomainFilter) ([]models.Domain, error) {
	return s.domains.List(ctx, f)
}

// Search matches the query as a case-insensitive substring of the name. When
// fewer than five results are found it probes the same base name under the
// alternate extensions and appends any existing listings as suggestions.
func (s *DomainService) Search(ctx context.Context, query string) ([]models.Domain, error) {
	query = strings.ToLower(strings.TrimSpace(query))

	var results []models.Domain
	seen := make(map[uuid.UUID]bool)

	// An exact "name.ext" query surfaces that listing first.
	if idx := strings.LastIndex(query, "."); idx > 0 {
		name, ext := query[:idx], query[idx:]
		if d, err := s.domains.GetByNameExtension(ctx, name, ext); err == nil {
			results = append(results, *d)
			seen[d.ID] = true
		}
	}

	base := query
	if idx := strings.Index(base, "."); idx > 0 {
		base = base[:idx]
	}

	partial, err := s.domains.List(ctx, repositories.DomainFilter{Search: &base, Limit: 20})
	if err != nil {
		return nil, err
	}
	for _, d := range partial {
		if !seen[d.ID] {
			results = append(results, d)
			seen[d.ID] = true
		}
	}

	if len(results) < 5 {
		for _, ext := range models.AlternateExtensions {
			d, err := s.domains.GetByNameExtension(ctx, base, ext)
			if err != nil || seen[d.ID] {
				continue
			}
			results = append(results, *d)
			seen[d.ID] = true
		}
	}

	return results, nil
}
