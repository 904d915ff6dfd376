package services

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/techagentng/thermotrack/config"
	"github.com/techagentng/thermotrack/db"
	apiError "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
	"github.com/techagentng/thermotrack/services/jwt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// AuthService handles signup, login and logout, including the Google
// OAuth flow which creates the user on first login.
type AuthService interface {
	SignupUser(user *models.User) (*models.User, error)
	LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error)
	GoogleLoginUser(ctx context.Context, code string) (*models.LoginResponse, *apiError.Error)
	LogoutUser(email string, token string) error
	GetUserProfile(userID uint) (*models.User, error)
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
}

func NewAuthService(authRepo db.AuthRepository, conf *config.Config) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
	}
}

func (s *authService) SignupUser(user *models.User) (*models.User, error) {
	if user == nil || user.Email == "" {
		return nil, errors.New("email is empty")
	}

	if err := s.authRepo.IsEmailExist(user.Email); err != nil {
		log.Printf("SignupUser error: %v", err)
		return nil, err
	}

	if err := models.ValidatePassword(user.Password); err != nil {
		return nil, err
	}
	if err := user.HashPassword(); err != nil {
		log.Printf("SignupUser error hashing password: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	user.IsEmailActive = true

	created, err := s.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("SignupUser error creating user: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	return created, nil
}

// LoginUser logs in a user and returns the login response
func (a *authService) LoginUser(loginRequest *models.LoginRequest) (*models.LoginResponse, *apiError.Error) {
	foundUser, err := a.authRepo.FindUserByEmail(loginRequest.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("invalid email or password", http.StatusUnprocessableEntity)
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	if !foundUser.IsEmailActive {
		return nil, apiError.New("account is not active", http.StatusUnauthorized)
	}
	if err := foundUser.VerifyPassword(loginRequest.Password); err != nil {
		log.Printf("Invalid password for user %s", foundUser.Email)
		return nil, apiError.New("invalid email or password", http.StatusUnprocessableEntity)
	}

	accessToken, refreshToken, err := jwt.GenerateToken(foundUser.ID, foundUser.Email, a.Config.JWTSecret)
	if err != nil {
		log.Printf("Error generating token pair for user %s: %v", foundUser.Email, err)
		return nil, apiError.ErrInternalServerError
	}

	foundUser.Online = true
	if err := a.authRepo.UpdateUserStatus(foundUser); err != nil {
		log.Printf("Error updating online status for user %s: %v", foundUser.Email, err)
	}

	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:       foundUser.ID,
			Fullname: foundUser.Fullname,
			Email:    foundUser.Email,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GoogleLoginUser exchanges the OAuth authorization code for a Google
// identity and logs the user in, creating the account on first login.
func (a *authService) GoogleLoginUser(ctx context.Context, code string) (*models.LoginResponse, *apiError.Error) {
	oauthConfig := &oauth2.Config{
		ClientID:     a.Config.GoogleClientID,
		ClientSecret: a.Config.GoogleClientSecret,
		RedirectURL:  a.Config.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		log.Printf("Error exchanging authorization code: %v", err)
		return nil, apiError.New("unable to exchange authorization code", http.StatusUnauthorized)
	}

	svc, err := oauth2v2.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		log.Printf("Error creating oauth2 service: %v", err)
		return nil, apiError.ErrInternalServerError
	}
	userInfo, err := svc.Userinfo.Get().Do()
	if err != nil {
		log.Printf("Error fetching Google user info: %v", err)
		return nil, apiError.New("unable to fetch user info", http.StatusUnauthorized)
	}

	foundUser, err := a.authRepo.FindUserByEmail(userInfo.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.createGoogleUser(&models.CreateSocialUserParams{
				Email:    userInfo.Email,
				Name:     userInfo.Name,
				IsSocial: true,
				Active:   true,
			})
		}
		log.Printf("Error finding user by email: %v", err)
		return nil, apiError.New("unable to find user", http.StatusInternalServerError)
	}

	accessToken, refreshToken, err := jwt.GenerateToken(foundUser.ID, foundUser.Email, a.Config.JWTSecret)
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}
	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:       foundUser.ID,
			Fullname: foundUser.Fullname,
			Email:    foundUser.Email,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authService) createGoogleUser(params *models.CreateSocialUserParams) (*models.LoginResponse, *apiError.Error) {
	name := params.Name
	if name == "" {
		name = strings.Split(params.Email, "@")[0]
	}
	user := &models.User{
		Fullname:      name,
		Email:         params.Email,
		IsSocial:      params.IsSocial,
		IsEmailActive: params.Active,
	}
	created, err := a.authRepo.CreateUser(user)
	if err != nil {
		log.Printf("Error creating google user: %v", err)
		return nil, apiError.ErrInternalServerError
	}

	accessToken, refreshToken, err := jwt.GenerateToken(created.ID, created.Email, a.Config.JWTSecret)
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}
	return &models.LoginResponse{
		UserResponse: models.UserResponse{
			ID:       created.ID,
			Fullname: created.Fullname,
			Email:    created.Email,
		},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (a *authService) LogoutUser(email string, token string) error {
	return a.authRepo.AddToBlackList(&models.Blacklist{
		Email: email,
		Token: token,
	})
}

func (a *authService) GetUserProfile(userID uint) (*models.User, error) {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to fetch user profile")
	}
	return user, nil
}
