package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"candle-labels/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryHandler_GetAll(t *testing.T) {
	mockService := new(MockCategoryService)
	handler := NewCategoryHandler(mockService, zerolog.Nop())

	mockService.On("GetAll", mock.Anything).Return([]model.Category{{ID: 1, Name: "Защита"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()
	handler.GetAll(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var categories []model.Category
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Equal(t, "Защита", categories[0].Name)
}

func TestCategoryHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockReturn     *model.Category
		mockError      error
		expectedStatus int
	}{
		{"Created", &model.Category{ID: 2, Name: "Любовь"}, nil, http.StatusCreated},
		{"Duplicate", nil, model.ErrCategoryExists, http.StatusConflict},
		{"Blank name", nil, model.MissingField("name"), http.StatusBadRequest},
		{"Store failure", nil, errors.New("database error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockCategoryService)
			handler := NewCategoryHandler(mockService, logger)

			mockService.On("Create", mock.Anything, &model.CategoryCreate{Name: "Любовь"}).Return(tt.mockReturn, tt.mockError)

			req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Любовь"}`))
			w := httptest.NewRecorder()
			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.LoginResponse
		mockError      error
		expectService  bool
		expectedStatus int
	}{
		{
			name:           "Success",
			body:           `{"login":"admin","password":"secret"}`,
			mockReturn:     &model.LoginResponse{AccessToken: "jwt", TokenType: "bearer", ExpiresIn: 1800},
			expectService:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong password",
			body:           `{"login":"admin","password":"nope"}`,
			mockError:      model.ErrInvalidCredentials,
			expectService:  true,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid JSON",
			body:           `login=admin`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := new(MockAuthenticator)
			handler := NewAuthHandler(mockAuth, logger)

			if tt.expectService {
				mockAuth.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.mockReturn != nil {
				var resp model.LoginResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "bearer", resp.TokenType)
				assert.Equal(t, "jwt", resp.AccessToken)
			}
		})
	}
}
