package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/monitoring"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/store"
)

const msgListingNotFound = "CPT data not found."

// CatalogService searches and maintains the CPT listing catalog
type CatalogService struct {
	listings store.ListingRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(listings store.ListingRepository) *CatalogService {
	return &CatalogService{listings: listings}
}

// Search finds listings whose code or description contains cpt and whose ZIP equals zip.
// At least one criterion is required; both are combined with AND.
func (s *CatalogService) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	query.CPT = strings.TrimSpace(query.CPT)
	query.Zip = strings.TrimSpace(query.Zip)
	if query.CPT == "" && query.Zip == "" {
		return nil, apierrors.ValidationError(msgSearchParamRequired)
	}
	if query.Zip != "" && !models.ZipCodePattern.MatchString(query.Zip) {
		return nil, apierrors.ValidationError(msgInvalidZip)
	}
	query.Normalize()

	results, total, err := s.listings.SearchListings(ctx, &store.ListingFilters{
		Term:    query.CPT,
		ZipCode: query.Zip,
		Limit:   query.Limit,
		Offset:  query.Offset(),
	})
	if err != nil {
		return nil, apierrors.DatabaseError("search listings", err)
	}

	return &models.SearchResponse{
		Results:    results,
		Pagination: models.NewPagination(total, query.PageQuery),
	}, nil
}

// GetListing returns a single listing
func (s *CatalogService) GetListing(ctx context.Context, id string) (*models.CPTListing, error) {
	listing, err := s.listings.GetListingByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.NotFoundError(msgListingNotFound)
		}
		return nil, apierrors.DatabaseError("lookup listing", err)
	}
	return listing, nil
}

// ImportListings validates the listings and upserts them keyed by CPT code
func (s *CatalogService) ImportListings(ctx context.Context, listings []models.CPTListing) (int, error) {
	if len(listings) == 0 {
		return 0, apierrors.ValidationError("No listings to import.")
	}
	seen := make(map[string]int, len(listings))
	for i := range listings {
		if err := validateListing(&listings[i]); err != nil {
			return 0, apierrors.ValidationError(fmt.Sprintf("Listing %d: %s", i+1, err))
		}
		if prev, dup := seen[listings[i].CPTCode]; dup {
			return 0, apierrors.ValidationError(fmt.Sprintf("Listing %d: duplicate CPT code %s (also listing %d)", i+1, listings[i].CPTCode, prev))
		}
		seen[listings[i].CPTCode] = i + 1
	}

	n, err := s.listings.UpsertListings(ctx, listings)
	if err != nil {
		return 0, apierrors.DatabaseError("import listings", err)
	}

	slog.Info("CPT listings imported", "count", n)
	monitoring.RecordBusinessEvent(monitoring.ActionListingsImport, monitoring.OutcomeSuccess)
	return n, nil
}

func validateListing(l *models.CPTListing) error {
	l.CPTCode = strings.TrimSpace(l.CPTCode)
	l.Specialty = strings.TrimSpace(l.Specialty)
	l.Description = strings.TrimSpace(l.Description)
	l.County = strings.TrimSpace(l.County)
	l.State = strings.ToUpper(strings.TrimSpace(l.State))
	l.ZipCode = strings.TrimSpace(l.ZipCode)

	switch {
	case l.CPTCode == "":
		return errors.New("cptCode is required")
	case l.Specialty == "" || l.Description == "" || l.County == "" || l.State == "":
		return fmt.Errorf("specialty, description, county and state are required for %s", l.CPTCode)
	case len(l.State) != 2:
		return fmt.Errorf("state must be a two-letter code for %s", l.CPTCode)
	case !models.ZipCodePattern.MatchString(l.ZipCode):
		return fmt.Errorf("zipCode must be exactly 5 digits for %s", l.CPTCode)
	case l.AvgCharge < 0 || l.MinCharge < 0 || l.MaxCharge < 0 || l.ReserveAmount < 0:
		return fmt.Errorf("charges and reserve must be non-negative for %s", l.CPTCode)
	}
	return nil
}
