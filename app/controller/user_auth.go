package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	httpdto "github.com/vibast-solutions/ms-go-user/app/dto/http"
	"github.com/vibast-solutions/ms-go-user/app/middleware"
	"github.com/vibast-solutions/ms-go-user/app/service"
	"github.com/vibast-solutions/ms-go-user/app/types"
	"github.com/vibast-solutions/ms-go-user/config"
)

const (
	messageSignupSuccess   = "Sign-Up Successful"
	messageLoginSuccess    = "Login Successful"
	messageRefreshSuccess  = "Token refreshed"
	messageProfileSuccess  = "Profile fetched"
	messageResetSuccess    = "Password reset successful"
	messageUserExists      = "User already exists"
	messageInvalidCreds    = "Invalid credentials"
	messageInvalidToken    = "Invalid or expired token"
	messageUserNotFound    = "User not found"
	messageResetNotAllowed = "Forbidden"
)

type UserAuthController struct {
	userAuthService service.UserAuthService
	policy          config.PasswordPolicy
}

func NewUserAuthController(userAuthService service.UserAuthService, cfg *config.Config) *UserAuthController {
	return &UserAuthController{
		userAuthService: userAuthService,
		policy:          cfg.Password.Policy,
	}
}

func (c *UserAuthController) Signup(ctx echo.Context) error {
	req, err := types.NewSignupRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind signup request")
		return ctx.JSON(http.StatusBadRequest, httpdto.Error(httpdto.MessageInvalidBody))
	}

	if err = req.Validate(c.policy); err != nil {
		logrus.WithField("email", req.Email).Debug("Signup validation failed")
		return validationFailed(ctx, err)
	}

	logrus.WithFields(logrus.Fields{
		"email":    req.Email,
		"username": req.Username,
	}).Info("Signup request received")
	result, err := c.userAuthService.Signup(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Signup failed: user already exists")
			return ctx.JSON(http.StatusConflict, httpdto.Error(messageUserExists))
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Signup failed")
		return internalError(ctx)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": result.ID,
		"email":   result.Email,
	}).Info("User signed up")

	return ctx.JSON(http.StatusCreated, httpdto.Success(result, messageSignupSuccess))
}

func (c *UserAuthController) Login(ctx echo.Context) error {
	req, err := types.NewLoginRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.Error(httpdto.MessageInvalidBody))
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("email", req.Email).Debug("Login validation failed")
		return validationFailed(ctx, err)
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.userAuthService.Login(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.Error(messageInvalidCreds))
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return internalError(ctx)
	}

	logrus.WithField("user_id", result.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.Success(result, messageLoginSuccess))
}

func (c *UserAuthController) Refresh(ctx echo.Context) error {
	req, err := types.NewRefreshRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind refresh request")
		return ctx.JSON(http.StatusBadRequest, httpdto.Error(httpdto.MessageInvalidBody))
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Refresh validation failed")
		return validationFailed(ctx, err)
	}

	result, err := c.userAuthService.Refresh(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.Warn("Refresh failed: unknown refresh token")
			return ctx.JSON(http.StatusUnauthorized, httpdto.Error(messageInvalidToken))
		}
		logrus.WithError(err).Error("Refresh failed")
		return internalError(ctx)
	}

	logrus.Info("Access token refreshed")
	return ctx.JSON(http.StatusOK, httpdto.Success(result, messageRefreshSuccess))
}

func (c *UserAuthController) Profile(ctx echo.Context) error {
	req, err := types.NewProfileRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind profile request")
		return ctx.JSON(http.StatusBadRequest, httpdto.Error(httpdto.MessageInvalidBody))
	}

	if err = req.Validate(); err != nil {
		logrus.WithField("id", req.ID).Debug("Profile validation failed")
		return validationFailed(ctx, err)
	}

	userID, ok := ctx.Get(middleware.ContextUserID).(string)
	if !ok {
		logrus.Warn("Profile failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.Error(httpdto.MessageUnauthorized))
	}

	id := req.ID
	if id == "" {
		id = userID
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"id":      id,
	}).Info("Profile request received")
	result, err := c.userAuthService.Profile(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			logrus.WithField("id", id).Warn("Profile failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.Error(messageUserNotFound))
		}
		logrus.WithError(err).WithField("id", id).Error("Profile failed")
		return internalError(ctx)
	}

	return ctx.JSON(http.StatusOK, httpdto.Success(result, messageProfileSuccess))
}

func (c *UserAuthController) ResetPassword(ctx echo.Context) error {
	req, err := types.NewResetPasswordRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind reset password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.Error(httpdto.MessageInvalidBody))
	}

	if err = req.Validate(c.policy); err != nil {
		logrus.WithField("email", req.Email).Debug("Reset password validation failed")
		return validationFailed(ctx, err)
	}

	userID, ok := ctx.Get(middleware.ContextUserID).(string)
	if !ok {
		logrus.Warn("Reset password failed: missing user_id in context")
		return ctx.JSON(http.StatusUnauthorized, httpdto.Error(httpdto.MessageUnauthorized))
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"email":   req.Email,
	}).Info("Reset password request received")
	if err = c.userAuthService.ResetPassword(ctx.Request().Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			logrus.WithField("email", req.Email).Warn("Reset password failed: user not found")
			return ctx.JSON(http.StatusNotFound, httpdto.Error(messageUserNotFound))
		case errors.Is(err, service.ErrResetNotPermitted):
			logrus.WithField("user_id", userID).Warn("Reset password failed: target is another user")
			return ctx.JSON(http.StatusForbidden, httpdto.Error(messageResetNotAllowed))
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Reset password failed")
		return internalError(ctx)
	}

	logrus.WithField("user_id", userID).Info("Password reset")
	return ctx.JSON(http.StatusOK, httpdto.Message(messageResetSuccess))
}

func validationFailed(ctx echo.Context, err error) error {
	var verr *types.ValidationError
	if errors.As(err, &verr) {
		return ctx.JSON(http.StatusBadRequest, httpdto.ValidationError(verr.Fields))
	}
	return ctx.JSON(http.StatusBadRequest, httpdto.Error(err.Error()))
}

func internalError(ctx echo.Context) error {
	return ctx.JSON(http.StatusInternalServerError, httpdto.Error(httpdto.MessageInternalError))
}
