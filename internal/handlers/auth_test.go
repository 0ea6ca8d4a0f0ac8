// internal/handlers/auth_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kon/onlineshop/internal/config"
	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

type AuthHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	// A second connection would see its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	require.NoError(s.T(), db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	))
	s.db = db

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	authHandler := NewAuthHandler(
		services.NewAuthService(db, cfg),
		services.NewCartService(db),
	)

	s.router = gin.New()
	auth := s.router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}

func (s *AuthHandlerTestSuite) post(path string, body map[string]interface{}) *httptest.ResponseRecorder {
	jsonData, err := json.Marshal(body)
	s.Require().NoError(err)
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonData))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *AuthHandlerTestSuite) register() {
	w := s.post("/auth/register", map[string]interface{}{
		"firstName": "Ivan",
		"lastName":  "Petrov",
		"email":     "ivan@example.com",
		"password":  "Sup3rSecret",
	})
	s.Require().Equal(http.StatusCreated, w.Code)
}

func (s *AuthHandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var response utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.Require().NotNil(response.Error)
	return response.Error.Code
}

func (s *AuthHandlerTestSuite) TestLoginSucceeds() {
	s.register()

	w := s.post("/auth/login", map[string]interface{}{
		"email":    "ivan@example.com",
		"password": "Sup3rSecret",
	})
	s.Require().Equal(http.StatusOK, w.Code)

	var response utils.APIResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	s.True(response.Success)
}

func (s *AuthHandlerTestSuite) TestLoginWrongPasswordIsUnauthorized() {
	s.register()

	w := s.post("/auth/login", map[string]interface{}{
		"email":    "ivan@example.com",
		"password": "WrongPass1",
	})
	s.Require().Equal(http.StatusUnauthorized, w.Code)
	s.Equal("UNAUTHORIZED", s.errorCode(w))
}

func (s *AuthHandlerTestSuite) TestLoginValidationFailureIsBadRequest() {
	s.register()

	// A malformed request is the client's 400, not a credentials 401.
	w := s.post("/auth/login", map[string]interface{}{
		"email":    "not-an-email",
		"password": "Sup3rSecret",
	})
	s.Require().Equal(http.StatusBadRequest, w.Code)
	s.Equal("BAD_REQUEST", s.errorCode(w))
}
