package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/courtline/courtline/internal/domain/identity"
	"github.com/courtline/courtline/internal/usecase"
)

// RecordMapping pins a provider id to an internal entity by hand, the
// escape hatch for rows the resolver reports as unmatched or ambiguous.
func (h *Handler) RecordMapping(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordMapping")
	defer span.End()

	var req recordMappingRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	mapping := identity.Mapping{
		EntityType: strings.TrimSpace(req.EntityType),
		Provider:   strings.TrimSpace(req.Provider),
		ProviderID: strings.TrimSpace(req.ProviderID),
		InternalID: req.InternalID,
		Metadata:   req.Metadata,
	}
	if err := h.resolverService.RecordMapping(ctx, mapping); err != nil {
		h.logger.WarnContext(ctx, "record mapping failed",
			"entity_type", mapping.EntityType,
			"provider", mapping.Provider,
			"provider_id", mapping.ProviderID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, mappingToDTO(ctx, mapping))
}

func (h *Handler) ListMappings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMappings")
	defer span.End()

	entityType := strings.TrimSpace(r.URL.Query().Get("entity_type"))
	internalID, err := queryInt64(r, "internal_id")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	mappings, err := h.resolverService.ListMappings(ctx, entityType, internalID)
	if err != nil {
		h.logger.WarnContext(ctx, "list mappings failed", "entity_type", entityType, "internal_id", internalID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]mappingDTO, 0, len(mappings))
	for _, m := range mappings {
		items = append(items, mappingToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListUnmapped(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUnmapped")
	defer span.End()

	entityType := strings.TrimSpace(r.URL.Query().Get("entity_type"))
	provider := strings.TrimSpace(r.URL.Query().Get("provider"))
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	ids, err := h.resolverService.ListUnmapped(ctx, entityType, provider, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list unmapped failed", "entity_type", entityType, "provider", provider, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, unmappedDTO{
		EntityType:  entityType,
		Provider:    provider,
		InternalIDs: ids,
	})
}

type recordMappingRequest struct {
	EntityType string         `json:"entityType" validate:"required,oneof=game player team"`
	Provider   string         `json:"provider" validate:"required"`
	ProviderID string         `json:"providerId" validate:"required"`
	InternalID int64          `json:"internalId" validate:"required,gt=0"`
	Metadata   map[string]any `json:"metadata"`
}

type mappingDTO struct {
	EntityType string         `json:"entityType"`
	Provider   string         `json:"provider"`
	ProviderID string         `json:"providerId"`
	InternalID int64          `json:"internalId"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	FetchedAt  string         `json:"fetchedAt,omitempty"`
}

type unmappedDTO struct {
	EntityType  string  `json:"entityType"`
	Provider    string  `json:"provider"`
	InternalIDs []int64 `json:"internalIds"`
}

func mappingToDTO(ctx context.Context, m identity.Mapping) mappingDTO {
	ctx, span := startSpan(ctx, "httpapi.mappingToDTO")
	defer span.End()

	dto := mappingDTO{
		EntityType: m.EntityType,
		Provider:   m.Provider,
		ProviderID: m.ProviderID,
		InternalID: m.InternalID,
		Metadata:   m.Metadata,
	}
	if !m.FetchedAt.IsZero() {
		dto.FetchedAt = m.FetchedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
