// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/config"
	"github.com/kon/onlineshop/internal/models"
	"github.com/kon/onlineshop/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	s.service = NewAuthService(s.db, cfg)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func registerRequest(email string) *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Ivan",
		LastName:  "Petrov",
		Email:     email,
		Password:  "Sup3rSecret",
	}
}

func (s *AuthServiceTestSuite) TestRegister() {
	resp, err := s.service.Register(registerRequest("ivan@example.com"))
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
	s.NotEmpty(resp.RefreshToken)
	s.Equal("Bearer", resp.TokenType)
	s.Equal(3600, resp.ExpiresIn)
	s.Equal(models.UserRoleCustomer, resp.User.Role)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID.String(), claims.UserID)
	s.Equal("ivan@example.com", claims.Email)
}

func (s *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	_, err := s.service.Register(registerRequest("ivan@example.com"))
	s.Require().NoError(err)

	_, err = s.service.Register(registerRequest("ivan@example.com"))
	s.Require().Error(err)
	s.IsType(&ConflictError{}, err)
}

func (s *AuthServiceTestSuite) TestRegisterWeakPassword() {
	req := registerRequest("ivan@example.com")
	req.Password = "password"
	_, err := s.service.Register(req)
	s.Require().Error(err)
	s.IsType(&BadRequestError{}, err)
}

func (s *AuthServiceTestSuite) TestLogin() {
	_, err := s.service.Register(registerRequest("ivan@example.com"))
	s.Require().NoError(err)

	resp, err := s.service.Login(&LoginRequest{Email: "ivan@example.com", Password: "Sup3rSecret"})
	s.Require().NoError(err)
	s.NotEmpty(resp.AccessToken)
}

func (s *AuthServiceTestSuite) TestLoginWrongPassword() {
	_, err := s.service.Register(registerRequest("ivan@example.com"))
	s.Require().NoError(err)

	// Wrong password and unknown email produce the same message.
	_, err = s.service.Login(&LoginRequest{Email: "ivan@example.com", Password: "WrongPass1"})
	s.Require().EqualError(err, "invalid email or password")

	_, err = s.service.Login(&LoginRequest{Email: "nobody@example.com", Password: "Sup3rSecret"})
	s.Require().EqualError(err, "invalid email or password")
}

func (s *AuthServiceTestSuite) TestRefreshToken() {
	registered, err := s.service.Register(registerRequest("ivan@example.com"))
	s.Require().NoError(err)

	resp, err := s.service.RefreshToken(registered.RefreshToken)
	s.Require().NoError(err)
	s.Equal(registered.User.ID, resp.User.ID)
	s.NotEmpty(resp.AccessToken)

	_, err = s.service.RefreshToken("not-a-token")
	s.Require().Error(err)
}

func (s *AuthServiceTestSuite) TestPasswordIsHashed() {
	resp, err := s.service.Register(registerRequest("ivan@example.com"))
	s.Require().NoError(err)

	var user models.User
	s.Require().NoError(s.db.First(&user, "id = ?", resp.User.ID).Error)
	s.NotEqual("Sup3rSecret", user.PasswordHash)
	s.Require().NoError(user.CheckPassword("Sup3rSecret"))
	s.Require().Error(user.CheckPassword("Sup3rSecret2"))
}
