package mocks

import (
	"context"

	"github.com/pevans/mipsize/autosize"
	"github.com/stretchr/testify/mock"
)

// MockPageFetcher is a mock implementation of the PageFetcher interface.
// Use this to test the resolver without reaching the catalog.
type MockPageFetcher struct {
	mock.Mock
}

// Ensure MockPageFetcher implements autosize.PageFetcher
var _ autosize.PageFetcher = (*MockPageFetcher)(nil)

// FetchInstancePage mocks fetching a model's detail page
func (m *MockPageFetcher) FetchInstancePage(ctx context.Context, model string) (string, error) {
	args := m.Called(ctx, model)
	return args.String(0), args.Error(1)
}

// ExpectPage sets up an expectation that model's page is fetched and
// returns page
func (m *MockPageFetcher) ExpectPage(model, page string) *mock.Call {
	return m.On("FetchInstancePage", mock.Anything, model).Return(page, nil)
}

// ExpectError sets up an expectation that fetching model's page fails
func (m *MockPageFetcher) ExpectError(model string, err error) *mock.Call {
	return m.On("FetchInstancePage", mock.Anything, model).Return("", err)
}
