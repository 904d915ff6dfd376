package models

import (
	"errors"
	"fmt"

	goval "github.com/go-passwd/validator"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// User represents a user of the application. A user submits reports and
// may also act as a collector on reports submitted by others.
type User struct {
	Model
	Fullname       string         `json:"fullname" binding:"required,min=2"`
	Email          string         `json:"email" gorm:"unique;not null" binding:"required,email"`
	Password       string         `json:"password,omitempty" gorm:"-" validate:"omitempty,min=4"`
	HashedPassword string         `json:"-"`
	IsEmailActive  bool           `json:"-"`
	IsSocial       bool           `json:"-"`
	AccessToken    string         `json:"-" gorm:"-"`
	Online         bool           `json:"online"`
	ThumbNailURL   string         `json:"thumbnail_url,omitempty"`
	Notifications  []Notification `gorm:"foreignKey:UserID" json:"-"`
}

// CreateSocialUserParams represents the parameters required to create a new social user.
type CreateSocialUserParams struct {
	Email    string `json:"email"`
	IsSocial bool   `json:"is_social"`
	Active   bool   `json:"active"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	UserResponse
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type GoogleAuthResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Blacklist holds access tokens invalidated by logout.
type Blacklist struct {
	Model
	Email string `json:"email"`
	Token string `json:"token"`
}

// DeviceToken stores a push token registered for a user's device.
type DeviceToken struct {
	Model
	UserID uint   `json:"user_id" gorm:"index"`
	Token  string `json:"token" gorm:"not null"`
}

func ValidatePassword(password string) error {
	passwordValidator := goval.New(goval.MinLength(6, errors.New("password cant be less than 6 characters")),
		goval.MaxLength(15, errors.New("password cant be more than 15 characters")))
	err := passwordValidator.Validate(password)
	return err
}

func validateWhiteSpaces(data interface{}) error {
	return conform.Strings(data)
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans) + "; ")
		errs = append(errs, translatedErr)
	}
	return errs
}

// ValidateUser conforms whitespace and applies struct validation tags.
func ValidateUser(u *User) error {
	if err := validateWhiteSpaces(u); err != nil {
		return err
	}
	return validator.New().Struct(u)
}

// VerifyPassword verifies the collected password with the user's hashed password
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

func (u *User) HashPassword() error {
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hash)
	u.Password = ""
	return nil
}
