package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/perfsight/cgviewer/internal/store"
)

// MockSessionRepository is a mock implementation of the store.SessionRepository interface.
type MockSessionRepository struct {
	mock.Mock
}

// Create mocks the Create method.
func (m *MockSessionRepository) Create(ctx context.Context, session *store.IngestSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// Get mocks the Get method.
func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*store.IngestSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.IngestSession), args.Error(1)
}

// List mocks the List method.
func (m *MockSessionRepository) List(ctx context.Context, limit int) ([]*store.IngestSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.IngestSession), args.Error(1)
}

// ExpectCreate sets up an expectation for Create.
func (m *MockSessionRepository) ExpectCreate(err error) *mock.Call {
	return m.On("Create", mock.Anything, mock.Anything).Return(err)
}

// ExpectGet sets up an expectation for Get.
func (m *MockSessionRepository) ExpectGet(sessionID string, session *store.IngestSession, err error) *mock.Call {
	return m.On("Get", mock.Anything, sessionID).Return(session, err)
}

// ExpectList sets up an expectation for List.
func (m *MockSessionRepository) ExpectList(limit int, sessions []*store.IngestSession, err error) *mock.Call {
	return m.On("List", mock.Anything, limit).Return(sessions, err)
}

// MockSuggestionRepository is a mock implementation of the store.SuggestionRepository interface.
type MockSuggestionRepository struct {
	mock.Mock
}

// CreateBatch mocks the CreateBatch method.
func (m *MockSuggestionRepository) CreateBatch(ctx context.Context, suggestions []*store.Suggestion) error {
	args := m.Called(ctx, suggestions)
	return args.Error(0)
}

// ListBySession mocks the ListBySession method.
func (m *MockSuggestionRepository) ListBySession(ctx context.Context, sessionID string) ([]*store.Suggestion, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*store.Suggestion), args.Error(1)
}

// ExpectCreateBatch sets up an expectation for CreateBatch.
func (m *MockSuggestionRepository) ExpectCreateBatch(err error) *mock.Call {
	return m.On("CreateBatch", mock.Anything, mock.Anything).Return(err)
}

// ExpectListBySession sets up an expectation for ListBySession.
func (m *MockSuggestionRepository) ExpectListBySession(sessionID string, suggestions []*store.Suggestion, err error) *mock.Call {
	return m.On("ListBySession", mock.Anything, sessionID).Return(suggestions, err)
}
