package resolver

import (
	"context"
	"encoding/json"
	"errors"

	"bazaar-chat/internal/aggregate"
	"bazaar-chat/internal/repository"
	bazaar_errors "bazaar-chat/pkg/errors"

	"github.com/google/uuid"
)

type ListingResolver struct {
	listings repository.ListingRepository
}

func NewListingResolver(listings repository.ListingRepository) *ListingResolver {
	return &ListingResolver{listings: listings}
}

// ResolveListing returns the preview for a listing id, or (nil, nil) when
// the listing has been removed.
func (r *ListingResolver) ResolveListing(ctx context.Context, id uuid.UUID) (*aggregate.ListingPreview, error) {
	row, err := r.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bazaar_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, bazaar_errors.Store("resolve listing", err)
	}

	var urls []string
	if row.ImageURLs != "" {
		// stored as a JSON array; a malformed value degrades to no images
		_ = json.Unmarshal([]byte(row.ImageURLs), &urls)
	}
	return &aggregate.ListingPreview{
		ID:         row.ID,
		Title:      row.Title,
		ImageURLs:  urls,
		PriceCents: row.PriceCents,
	}, nil
}
