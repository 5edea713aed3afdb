package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"stock-dashboard/cache"
	"stock-dashboard/config"
	"stock-dashboard/database"
	"stock-dashboard/logger"
	"stock-dashboard/middleware"
	"stock-dashboard/models"
)

type AuthInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// AuthHandler signs users up and issues access and refresh tokens.
type AuthHandler struct {
	users database.UserStore
	cache cache.Cache
	jwt   config.JWTConfig
	log   logger.Interface
}

func NewAuthHandler(users database.UserStore, c cache.Cache, jwt config.JWTConfig, log logger.Interface) *AuthHandler {
	return &AuthHandler{users: users, cache: c, jwt: jwt, log: log}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var input AuthInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	_, err := h.users.FindByEmail(ctx, input.Email)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.log.ErrorContext(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
		return
	}

	user := models.User{Email: input.Email, Password: string(hashedPassword)}
	if err := h.users.Create(ctx, &user); err != nil {
		h.log.ErrorContext(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	user, err := h.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			h.log.ErrorContext(ctx, err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	accessToken, err := middleware.IssueToken(h.jwt.Secret, user.ID, h.jwt.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}

	refreshToken, err := newRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating refresh token"})
		return
	}
	if err := h.cache.Set(ctx, cache.RefreshTokenKey(refreshToken), user.ID, h.jwt.RefreshTTL); err != nil {
		h.log.ErrorContext(ctx, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error storing refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// Refresh trades a stored refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var input struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID uint
	if err := h.cache.Get(c.Request.Context(), cache.RefreshTokenKey(input.RefreshToken), &userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessToken, err := middleware.IssueToken(h.jwt.Secret, userID, h.jwt.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// Dashboard is the protected welcome endpoint.
func (h *AuthHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to your dashboard!",
		"user_id": c.MustGet(middleware.UserIDKey).(uint),
	})
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
