package ebay

import (
	"context"
	"fmt"
	"testing"

	"github.com/pokebrief/gradewatch/internal/model"
)

// MockProvider is a test-only Provider implementation.
type MockProvider struct {
	listings  []model.Listing
	err       error
	available bool
	queries   []string
}

var _ Provider = (*MockProvider)(nil)

func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

func (m *MockProvider) Available() bool {
	return m.available
}

func (m *MockProvider) Search(ctx context.Context, query string, limit int) ([]model.Listing, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && len(m.listings) > limit {
		return m.listings[:limit], nil
	}
	return m.listings, nil
}

func (m *MockProvider) SetTestListings(listings []model.Listing) {
	m.listings = listings
}

func (m *MockProvider) SetTestError(err error) {
	m.err = err
}

func TestMockProvider_CustomListings(t *testing.T) {
	mock := NewMockProvider()
	mock.SetTestListings([]model.Listing{
		{Title: "Charizard PSA 10", Price: 850, URL: "https://test/1"},
		{Title: "Charizard raw", Price: 120, URL: "https://test/2"},
	})

	listings, err := mock.Search(context.Background(), "charizard", 10)
	if err != nil {
		t.Fatalf("mock search failed: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("got %d listings, want 2", len(listings))
	}
	if len(mock.queries) != 1 || mock.queries[0] != "charizard" {
		t.Errorf("recorded queries = %v", mock.queries)
	}
}

func TestMockProvider_LimitRespected(t *testing.T) {
	mock := NewMockProvider()
	mock.SetTestListings([]model.Listing{
		{Title: "a", Price: 1},
		{Title: "b", Price: 2},
		{Title: "c", Price: 3},
	})

	listings, err := mock.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("mock search failed: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("got %d listings, want 2", len(listings))
	}
}

func TestMockProvider_ErrorInjection(t *testing.T) {
	mock := NewMockProvider()
	testErr := fmt.Errorf("test error")
	mock.SetTestError(testErr)

	if _, err := mock.Search(context.Background(), "q", 1); err != testErr {
		t.Errorf("err = %v, want injected error", err)
	}
}
