package server

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/thermotrack/errors"
	"github.com/techagentng/thermotrack/models"
	"github.com/techagentng/thermotrack/server/response"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := decode(c, &user); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}
		if err := models.ValidateUser(&user); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		created, err := s.AuthService.SignupUser(&user)
		if err != nil {
			if e, ok := err.(*errs.Error); ok {
				response.JSON(c, "", e.Status, nil, e)
				return
			}
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		response.JSON(c, "signup successful", http.StatusCreated, models.UserResponse{
			ID:       created.ID,
			Fullname: created.Fullname,
			Email:    created.Email,
		}, nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := decode(c, &loginRequest); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		loginResponse, apiErr := s.AuthService.LoginUser(&loginRequest)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

// HandleGoogleLogin redirects to Google's consent screen.
func (s *Server) HandleGoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		oauthConfig := &oauth2.Config{
			ClientID:     s.Config.GoogleClientID,
			ClientSecret: s.Config.GoogleClientSecret,
			RedirectURL:  s.Config.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}

		state, err := generateOauthState()
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		c.SetCookie("oauth_state", state, 600, "/", "", false, true)

		authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
		c.Redirect(http.StatusTemporaryRedirect, authURL)
	}
}

// HandleGoogleCallback finishes the OAuth flow, creating the account on
// first login.
func (s *Server) HandleGoogleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := c.Cookie("oauth_state")
		if err != nil || state == "" || c.Query("state") != state {
			response.JSON(c, "invalid oauth state", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		code := c.Query("code")
		if code == "" {
			response.JSON(c, "missing authorization code", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}

		loginResponse, apiErr := s.AuthService.GoogleLoginUser(c.Request.Context(), code)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		accessToken, tokenExists := c.Get("access_token")
		if !exists || !tokenExists {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		u := user.(*models.User)
		if err := s.AuthService.LogoutUser(u.Email, accessToken.(string)); err != nil {
			log.Printf("logout error: %v", err)
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		user, err := s.AuthService.GetUserProfile(userID)
		if err != nil {
			response.JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "profile retrieved", http.StatusOK, models.UserResponse{
			ID:       user.ID,
			Fullname: user.Fullname,
			Email:    user.Email,
		}, nil)
	}
}

func generateOauthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
