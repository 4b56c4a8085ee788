package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	dErrors "faceguard/pkg/domain-errors"
	"faceguard/pkg/platform/httputil"
	"faceguard/pkg/requestcontext"
)

type MockTokenResolver struct {
	mock.Mock
}

func (m *MockTokenResolver) ResolveToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// captureHandler records whether it was reached and the context it saw.
type captureHandler struct {
	called bool
	ctx    context.Context
}

func (c *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.called = true
	c.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	resolver *MockTokenResolver
	next     *captureHandler
	handler  http.Handler
}

func (s *AuthMiddlewareTestSuite) SetupTest() {
	s.resolver = new(MockTokenResolver)
	s.next = &captureHandler{}
	s.handler = RequireAuth(s.resolver, slog.New(slog.DiscardHandler))(s.next)
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func (s *AuthMiddlewareTestSuite) serve(header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/compare", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *AuthMiddlewareTestSuite) decode(rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	var body httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *AuthMiddlewareTestSuite) TestValidToken() {
	s.resolver.On("ResolveToken", mock.Anything, "tok-123").Return("alice", nil)

	rec := s.serve("Bearer tok-123")

	s.Equal(http.StatusOK, rec.Code)
	s.True(s.next.called)
	s.Equal("alice", requestcontext.Client(s.next.ctx))
	s.resolver.AssertExpectations(s.T())
}

func (s *AuthMiddlewareTestSuite) TestMissingHeader() {
	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer    "} {
		s.next.called = false
		rec := s.serve(header)

		s.Equal(http.StatusUnauthorized, rec.Code, header)
		s.False(s.next.called)
		s.Equal(httputil.CategoryInvalidCredential, s.decode(rec).Error)
	}
	s.resolver.AssertNotCalled(s.T(), "ResolveToken", mock.Anything, mock.Anything)
}

func (s *AuthMiddlewareTestSuite) TestUnknownToken() {
	s.resolver.On("ResolveToken", mock.Anything, "nope").
		Return("", dErrors.New(dErrors.CodeUnauthorized, "invalid token"))

	rec := s.serve("Bearer nope")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.False(s.next.called)
	s.Equal(httputil.CategoryInvalidCredential, s.decode(rec).Error)
}

func (s *AuthMiddlewareTestSuite) TestStoreFailure() {
	s.resolver.On("ResolveToken", mock.Anything, "tok").
		Return("", dErrors.Wrap(errors.New("disk gone"), dErrors.CodeStorage, "failed to read clients"))

	rec := s.serve("Bearer tok")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.False(s.next.called)
	body := s.decode(rec)
	s.Equal(httputil.CategoryStorageFailure, body.Error)
	s.Empty(body.Description)
}
