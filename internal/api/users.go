package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type registerInput struct {
	Username string `json:"username" binding:"required,max=32"`
	Password string `json:"password" binding:"required"`
}

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateInput struct {
	Target string `json:"target" binding:"required"`

	// target=username
	NewUsername string `json:"new_username"`

	// target=password
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func errorBody(reason string) gin.H {
	return gin.H{"status": "error", "reason": reason}
}

// Register creates a new account and returns a token pair bound to it.
func (h *Handler) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	users := repository.NewUsers(h.db)
	if _, err := users.FindByUsername(c.Request.Context(), input.Username); err == nil {
		c.JSON(http.StatusBadRequest, errorBody("username already exists"))
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		h.internalError(c, err)
		return
	}

	id, err := models.NewID()
	if err != nil {
		h.internalError(c, err)
		return
	}
	salt, err := auth.NewSalt()
	if err != nil {
		h.internalError(c, err)
		return
	}

	user := &models.User{
		ID:           id,
		Username:     input.Username,
		PasswordHash: auth.HashPassword(id, input.Password, salt),
		Salt:         salt,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewUsers(tx).Create(c.Request.Context(), user)
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	accessToken, err := h.issuer.AccessToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	refreshToken, err := h.issuer.RefreshToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":        "success",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"username":      user.Username,
	})
}

// Login verifies credentials and returns a fresh token pair.
func (h *Handler) Login(c *gin.Context) {
	var input loginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	users := repository.NewUsers(h.db)
	user, err := users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
			return
		}
		h.internalError(c, err)
		return
	}

	if !auth.VerifyPassword(user.ID, input.Password, user.Salt, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}

	accessToken, err := h.issuer.AccessToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	refreshToken, err := h.issuer.RefreshToken(user.ID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"username":      user.Username,
	})
}

// Refresh exchanges a valid refresh token for a new access token.
func (h *Handler) Refresh(c *gin.Context) {
	var input refreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	userID, err := h.issuer.ParseRefresh(input.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody(err.Error()))
		return
	}

	// The subject must still exist; a deleted account cannot mint tokens.
	if _, err := repository.NewUsers(h.db).FindByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, errorBody("user no longer exists"))
			return
		}
		h.internalError(c, err)
		return
	}

	accessToken, err := h.issuer.AccessToken(userID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"access_token": accessToken,
	})
}

// UpdateUser renames the caller's account or replaces its password,
// depending on the target field.
func (h *Handler) UpdateUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	var input updateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	switch input.Target {
	case "username":
		h.updateUsername(c, userID, input)
	case "password":
		h.updatePassword(c, userID, input)
	default:
		c.JSON(http.StatusBadRequest, errorBody("target is invalid"))
	}
}

func (h *Handler) updateUsername(c *gin.Context, userID string, input updateInput) {
	if input.NewUsername == "" || len(input.NewUsername) > 32 {
		c.JSON(http.StatusBadRequest, errorBody("new_username is invalid"))
		return
	}

	ctx := c.Request.Context()
	users := repository.NewUsers(h.db)

	if other, err := users.FindByUsername(ctx, input.NewUsername); err == nil && other.ID != userID {
		c.JSON(http.StatusBadRequest, errorBody("username already exists"))
		return
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.internalError(c, err)
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		txUsers := repository.NewUsers(tx)
		user, err := txUsers.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		user.Username = input.NewUsername
		return txUsers.Save(ctx, user)
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) updatePassword(c *gin.Context, userID string, input updateInput) {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		c.JSON(http.StatusBadRequest, errorBody("current_password and new_password are required"))
		return
	}

	ctx := c.Request.Context()
	user, err := repository.NewUsers(h.db).FindByID(ctx, userID)
	if err != nil {
		h.internalError(c, err)
		return
	}

	// Credential check happens before any mutation; a mismatch leaves the
	// stored hash and salt untouched.
	if !auth.VerifyPassword(user.ID, input.CurrentPassword, user.Salt, user.PasswordHash) {
		c.JSON(http.StatusBadRequest, errorBody("current password is incorrect"))
		return
	}

	salt, err := auth.NewSalt()
	if err != nil {
		h.internalError(c, err)
		return
	}
	user.Salt = salt
	user.PasswordHash = auth.HashPassword(user.ID, input.NewPassword, salt)

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return repository.NewUsers(tx).Save(ctx, user)
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// DeleteUser removes the caller's account and cascades the deletion to
// every post the account owns.
func (h *Handler) DeleteUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		unauthorized(c, "user not authenticated")
		return
	}

	ctx := c.Request.Context()
	user, err := repository.NewUsers(h.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, errorBody("user not found"))
			return
		}
		h.internalError(c, err)
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		txUsers := repository.NewUsers(tx)
		if err := txUsers.DeletePostsOwnedBy(ctx, user.ID); err != nil {
			return err
		}
		return txUsers.Delete(ctx, user)
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.log.WithError(err).Error("internal error")
	c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
}
