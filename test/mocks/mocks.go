// Package mocks provides testify mocks for the narrow interfaces used across
// the pipeline, so tests can substitute providers and stores without touching
// global state.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"googlemaps.github.io/maps"

	"github.com/avivlevi/donormap/internal/geocoding"
	"github.com/avivlevi/donormap/internal/models"
	"github.com/avivlevi/donormap/internal/resolver"
)

// Provider mocks geocoding.Provider.
type Provider struct {
	mock.Mock
}

func NewProvider(t *testing.T) *Provider {
	m := &Provider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Provider) Geocode(ctx context.Context, query string) (*geocoding.Result, error) {
	args := m.Called(ctx, query)

	var result *geocoding.Result
	if args.Get(0) != nil {
		result = args.Get(0).(*geocoding.Result)
	}

	return result, args.Error(1)
}

// GoogleAPIClient mocks the Google Maps client used by the Google provider.
type GoogleAPIClient struct {
	mock.Mock
}

func NewGoogleAPIClient(t *testing.T) *GoogleAPIClient {
	m := &GoogleAPIClient{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *GoogleAPIClient) Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error) {
	args := m.Called(ctx, r)

	var results []maps.GeocodingResult
	if args.Get(0) != nil {
		results = args.Get(0).([]maps.GeocodingResult)
	}

	return results, args.Error(1)
}

// CacheStore mocks resolver.CacheStore.
type CacheStore struct {
	mock.Mock
}

func NewCacheStore(t *testing.T) *CacheStore {
	m := &CacheStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *CacheStore) GetCachedLocation(ctx context.Context, key string) (*models.CacheEntry, error) {
	args := m.Called(ctx, key)

	var entry *models.CacheEntry
	if args.Get(0) != nil {
		entry = args.Get(0).(*models.CacheEntry)
	}

	return entry, args.Error(1)
}

func (m *CacheStore) SaveLocation(ctx context.Context, key string, coords models.Coordinates, isExact bool) error {
	args := m.Called(ctx, key, coords, isExact)

	return args.Error(0)
}

// StationSource mocks service.StationSource.
type StationSource struct {
	mock.Mock
}

func NewStationSource(t *testing.T) *StationSource {
	m := &StationSource{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *StationSource) FetchStations(ctx context.Context, limit int) ([]models.Station, error) {
	args := m.Called(ctx, limit)

	var stations []models.Station
	if args.Get(0) != nil {
		stations = args.Get(0).([]models.Station)
	}

	return stations, args.Error(1)
}

// DonationStore mocks service.DonationStore.
type DonationStore struct {
	mock.Mock
}

func NewDonationStore(t *testing.T) *DonationStore {
	m := &DonationStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *DonationStore) ReplaceDonations(ctx context.Context, donations []models.Donation) error {
	args := m.Called(ctx, donations)

	return args.Error(0)
}

// AddressResolver mocks service.AddressResolver.
type AddressResolver struct {
	mock.Mock
}

func NewAddressResolver(t *testing.T) *AddressResolver {
	m := &AddressResolver{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *AddressResolver) Resolve(ctx context.Context, addr models.Address) (*resolver.Resolution, error) {
	args := m.Called(ctx, addr)

	var resolution *resolver.Resolution
	if args.Get(0) != nil {
		resolution = args.Get(0).(*resolver.Resolution)
	}

	return resolution, args.Error(1)
}

// DonationReader mocks server.DonationReader.
type DonationReader struct {
	mock.Mock
}

func NewDonationReader(t *testing.T) *DonationReader {
	m := &DonationReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *DonationReader) DonationsByDate(ctx context.Context, date string) ([]models.Donation, error) {
	args := m.Called(ctx, date)

	var donations []models.Donation
	if args.Get(0) != nil {
		donations = args.Get(0).([]models.Donation)
	}

	return donations, args.Error(1)
}

func (m *DonationReader) Cities(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	var cities []string
	if args.Get(0) != nil {
		cities = args.Get(0).([]string)
	}

	return cities, args.Error(1)
}

func (m *DonationReader) Ping(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
