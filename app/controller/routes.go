package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-user/app/middleware"
)

// RegisterRoutes mounts the user endpoints on g. Profile and password reset sit
// behind the bearer gate.
func RegisterRoutes(g *echo.Group, users *UserAuthController, authMiddleware *middleware.AuthMiddleware) {
	g.POST("/signup", users.Signup)
	g.POST("/login", users.Login)
	g.POST("/refresh", users.Refresh)

	g.GET("/profile", users.Profile, authMiddleware.RequireAuth)
	g.POST("/reset-password", users.ResetPassword, authMiddleware.RequireAuth)
}
