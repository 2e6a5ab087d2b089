package types

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-user/config"
)

type SignupRequest struct {
	Email     string  `json:"email" validate:"required,email,max=255"`
	Username  string  `json:"username" validate:"required,min=3,max=50"`
	Password  string  `json:"password" validate:"required"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=1,max=50"`
}

func NewSignupRequestFromContext(ctx echo.Context) (*SignupRequest, error) {
	var body SignupRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *SignupRequest) Validate(policy config.PasswordPolicy) error {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)

	result := validateStruct(r)
	if r.Password != "" {
		if err := policy.Validate(r.Password); err != nil {
			result.Add("password", capitalize(err.Error()))
		}
	}

	return result.orNil()
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func NewLoginRequestFromContext(ctx echo.Context) (*LoginRequest, error) {
	var body LoginRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r).orNil()
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func NewRefreshRequestFromContext(ctx echo.Context) (*RefreshRequest, error) {
	var body RefreshRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *RefreshRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	return validateStruct(r).orNil()
}

type ProfileRequest struct {
	ID string `query:"id" validate:"omitempty,uuid"`
}

func NewProfileRequestFromContext(ctx echo.Context) (*ProfileRequest, error) {
	var query ProfileRequest
	if err := ctx.Bind(&query); err != nil {
		return nil, err
	}

	return &query, nil
}

func (r *ProfileRequest) Validate() error {
	r.ID = strings.TrimSpace(r.ID)
	return validateStruct(r).orNil()
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func NewResetPasswordRequestFromContext(ctx echo.Context) (*ResetPasswordRequest, error) {
	var body ResetPasswordRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	return &body, nil
}

func (r *ResetPasswordRequest) Validate(policy config.PasswordPolicy) error {
	r.Email = strings.TrimSpace(r.Email)

	result := validateStruct(r)
	if r.NewPassword != "" {
		if err := policy.Validate(r.NewPassword); err != nil {
			result.Add("newPassword", capitalize(err.Error()))
		}
	}

	return result.orNil()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
