package country

import (
	"context"

	"marketops/db"
	"marketops/models"
)

// CountryService exposes the country registry to the API. Countries are
// administered elsewhere; this side is read-only.
type CountryService struct {
	repo db.CountryRepository
}

// NewCountryService creates a new CountryService
func NewCountryService(repo db.CountryRepository) *CountryService {
	return &CountryService{repo: repo}
}

// List returns all countries ordered by id.
func (s *CountryService) List(ctx context.Context) ([]*models.Country, error) {
	countries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if countries == nil {
		countries = []*models.Country{}
	}
	return countries, nil
}
