package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtline/courtline/internal/domain/game"
	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/domain/player"
	"github.com/courtline/courtline/internal/domain/team"
)

// GameCandidate carries the provider-side facts used to infer which internal
// game a provider id refers to when no mapping exists yet.
type GameCandidate struct {
	StartTime time.Time
	HomeAbbr  string
	AwayAbbr  string
}

// ResolverService maps provider ids onto internal ids. Lookups go through
// the provider id map first; inference is attempted only when no mapping
// exists, and an inferred match is recorded so the next lookup is direct.
// More than one inference candidate is an ambiguity, never a guess.
type ResolverService struct {
	identityRepo identity.Repository
	gameRepo     game.Repository
	playerRepo   player.Repository
	teamRepo     team.Repository
	refLoc       *time.Location
	now          func() time.Time
}

func NewResolverService(
	identityRepo identity.Repository,
	gameRepo game.Repository,
	playerRepo player.Repository,
	teamRepo team.Repository,
	refLoc *time.Location,
) *ResolverService {
	if refLoc == nil {
		refLoc = time.UTC
	}

	return &ResolverService{
		identityRepo: identityRepo,
		gameRepo:     gameRepo,
		playerRepo:   playerRepo,
		teamRepo:     teamRepo,
		refLoc:       refLoc,
		now:          time.Now,
	}
}

// Resolve looks up an existing mapping without inference.
func (s *ResolverService) Resolve(ctx context.Context, entityType, provider, providerID string) (int64, error) {
	entityType = strings.TrimSpace(entityType)
	provider = strings.TrimSpace(provider)
	providerID = strings.TrimSpace(providerID)
	if !identity.IsKnownEntityType(entityType) {
		return 0, fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, entityType)
	}
	if provider == "" || providerID == "" {
		return 0, fmt.Errorf("%w: provider and provider id are required", ErrInvalidInput)
	}

	m, found, err := s.identityRepo.Lookup(ctx, entityType, provider, providerID)
	if err != nil {
		return 0, fmt.Errorf("lookup mapping: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: %s %s/%s", ErrNotFound, entityType, provider, providerID)
	}

	return m.InternalID, nil
}

// ResolveGame resolves a provider game id, inferring by local calendar date
// plus the unordered home/away abbreviation pair when no mapping exists.
func (s *ResolverService) ResolveGame(ctx context.Context, provider, providerID string, candidate GameCandidate) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveGame")
	defer span.End()

	internalID, err := s.Resolve(ctx, identity.EntityTypeGame, provider, providerID)
	if err == nil {
		return internalID, nil
	}
	if !isNotFoundErr(err) {
		return 0, err
	}

	if candidate.StartTime.IsZero() || candidate.HomeAbbr == "" || candidate.AwayAbbr == "" {
		return 0, fmt.Errorf("%w: game %s/%s has no mapping and no usable candidate", ErrNotFound, provider, providerID)
	}

	date := candidate.StartTime.In(s.refLoc).Format("2006-01-02")
	home := strings.ToUpper(strings.TrimSpace(candidate.HomeAbbr))
	away := strings.ToUpper(strings.TrimSpace(candidate.AwayAbbr))

	matches, err := s.gameRepo.FindByDatePair(ctx, date, home, away)
	if err != nil {
		return 0, fmt.Errorf("find games by date pair: %w", err)
	}
	// Providers disagree on orientation often enough that the swapped pair
	// counts as the same game.
	swapped, err := s.gameRepo.FindByDatePair(ctx, date, away, home)
	if err != nil {
		return 0, fmt.Errorf("find games by swapped pair: %w", err)
	}
	matches = mergeGameMatches(matches, swapped)

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: game %s/%s date=%s pair=%s@%s", ErrNotFound, provider, providerID, date, away, home)
	case 1:
	default:
		return 0, fmt.Errorf("%w: game %s/%s date=%s pair=%s@%s has %d candidates", ErrAmbiguousMatch, provider, providerID, date, away, home, len(matches))
	}

	resolved := matches[0].ID
	if err := s.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeGame,
		Provider:   provider,
		ProviderID: providerID,
		InternalID: resolved,
	}); err != nil {
		return 0, err
	}

	return resolved, nil
}

// ResolvePlayer resolves a provider player id, inferring by exact
// case-insensitive name equality with a diacritic-folded retry. Never
// creates players.
func (s *ResolverService) ResolvePlayer(ctx context.Context, provider, providerID, fullName string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolvePlayer")
	defer span.End()

	internalID, err := s.Resolve(ctx, identity.EntityTypePlayer, provider, providerID)
	if err == nil {
		return internalID, nil
	}
	if !isNotFoundErr(err) {
		return 0, err
	}

	normalized := player.NormalizeName(fullName)
	if normalized == "" {
		return 0, fmt.Errorf("%w: player %s/%s has no mapping and no name", ErrNotFound, provider, providerID)
	}

	matches, err := s.playerRepo.FindByName(ctx, normalized)
	if err != nil {
		return 0, fmt.Errorf("find player by name: %w", err)
	}
	if len(matches) == 0 {
		matches, err = s.playerRepo.FindByFoldedName(ctx, player.FoldName(fullName))
		if err != nil {
			return 0, fmt.Errorf("find player by folded name: %w", err)
		}
	}

	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: player %s/%s name=%q", ErrNotFound, provider, providerID, fullName)
	case 1:
	default:
		return 0, fmt.Errorf("%w: player %s/%s name=%q has %d candidates", ErrAmbiguousMatch, provider, providerID, fullName, len(matches))
	}

	resolved := matches[0].ID
	if err := s.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypePlayer,
		Provider:   provider,
		ProviderID: providerID,
		InternalID: resolved,
	}); err != nil {
		return 0, err
	}

	return resolved, nil
}

// ResolveTeam resolves a provider team id, inferring by abbreviation.
func (s *ResolverService) ResolveTeam(ctx context.Context, provider, providerID, abbreviation string) (int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.ResolveTeam")
	defer span.End()

	internalID, err := s.Resolve(ctx, identity.EntityTypeTeam, provider, providerID)
	if err == nil {
		return internalID, nil
	}
	if !isNotFoundErr(err) {
		return 0, err
	}

	abbreviation = strings.ToUpper(strings.TrimSpace(abbreviation))
	if abbreviation == "" {
		return 0, fmt.Errorf("%w: team %s/%s has no mapping and no abbreviation", ErrNotFound, provider, providerID)
	}

	t, found, err := s.teamRepo.GetByAbbreviation(ctx, abbreviation)
	if err != nil {
		return 0, fmt.Errorf("get team by abbreviation: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("%w: team %s/%s abbreviation=%s", ErrNotFound, provider, providerID, abbreviation)
	}

	if err := s.RecordMapping(ctx, identity.Mapping{
		EntityType: identity.EntityTypeTeam,
		Provider:   provider,
		ProviderID: providerID,
		InternalID: t.ID,
	}); err != nil {
		return 0, err
	}

	return t.ID, nil
}

// RecordMapping upserts a mapping keyed by (entity_type, provider,
// provider_id). Re-recording refreshes metadata and fetched time.
func (s *ResolverService) RecordMapping(ctx context.Context, m identity.Mapping) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.RecordMapping")
	defer span.End()

	m.EntityType = strings.TrimSpace(m.EntityType)
	m.Provider = strings.TrimSpace(m.Provider)
	m.ProviderID = strings.TrimSpace(m.ProviderID)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if m.FetchedAt.IsZero() {
		m.FetchedAt = s.now()
	}

	if err := s.identityRepo.Upsert(ctx, m); err != nil {
		return fmt.Errorf("upsert mapping: %w", err)
	}

	return nil
}

// ListMappings returns all provider mappings for one internal entity.
func (s *ResolverService) ListMappings(ctx context.Context, entityType string, internalID int64) ([]identity.Mapping, error) {
	if !identity.IsKnownEntityType(entityType) {
		return nil, fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, entityType)
	}
	if internalID <= 0 {
		return nil, fmt.Errorf("%w: internal id is required", ErrInvalidInput)
	}

	items, err := s.identityRepo.ListByInternal(ctx, entityType, internalID)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}

	return items, nil
}

// ListUnmapped returns internal ids still lacking a mapping for a provider.
func (s *ResolverService) ListUnmapped(ctx context.Context, entityType, provider string, limit int) ([]int64, error) {
	if !identity.IsKnownEntityType(entityType) {
		return nil, fmt.Errorf("%w: unknown entity type %q", ErrInvalidInput, entityType)
	}
	if strings.TrimSpace(provider) == "" {
		return nil, fmt.Errorf("%w: provider is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	ids, err := s.identityRepo.ListUnmapped(ctx, entityType, provider, limit)
	if err != nil {
		return nil, fmt.Errorf("list unmapped: %w", err)
	}

	return ids, nil
}

func mergeGameMatches(left, right []game.Game) []game.Game {
	seen := make(map[int64]bool, len(left))
	out := make([]game.Game, 0, len(left)+len(right))
	for _, g := range append(left, right...) {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		out = append(out, g)
	}
	return out
}

func isNotFoundErr(err error) bool {
	return errors.Is(err, ErrNotFound)
}
