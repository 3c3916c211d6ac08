package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/services"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
	"github.com/aquaflow/aquaflow-backend/pkg/utils"
)

type loginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type firebaseLoginInput struct {
	IDToken string `json:"idToken" binding:"required"`
}

// Login checks credentials and issues a JWT carrying the user's id and role.
func Login(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		user, err := store.GetUserByEmail(input.Email)
		if err != nil {
			internalError(c, "failed to fetch user", err)
			return
		}
		if user == nil || user.CheckPassword(input.Password) != nil {
			c.JSON(401, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := utils.GenerateToken(user)
		if err != nil {
			internalError(c, "failed to generate token", err)
			return
		}

		c.JSON(200, gin.H{"token": token, "user": user})
	}
}

// FirebaseLogin exchanges a Firebase ID token for an application JWT. The
// application user is looked up by the token email and created on first
// sign-in, defaulting to the resident role.
func FirebaseLogin(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input firebaseLoginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		uid, email, err := services.VerifyIDToken(c.Request.Context(), input.IDToken)
		if err != nil {
			if errors.Is(err, services.ErrFirebaseDisabled) {
				c.JSON(501, gin.H{"error": "Firebase sign-in is not configured"})
				return
			}
			c.JSON(401, gin.H{"error": "Invalid identity token"})
			return
		}
		if email == "" {
			c.JSON(401, gin.H{"error": "Identity token carries no email"})
			return
		}

		user, err := store.GetUserByEmail(email)
		if err != nil {
			internalError(c, "failed to fetch user", err)
			return
		}
		if user == nil {
			user = &models.User{
				Username: usernameFromEmail(email),
				Email:    email,
				Password: uid, // placeholder; Firebase owns the real credential
			}
			if err := user.HashPassword(); err != nil {
				internalError(c, "failed to hash password", err)
				return
			}
			if err := store.CreateUser(user); err != nil {
				if !errors.Is(err, storage.ErrDuplicate) {
					internalError(c, "failed to create user", err)
					return
				}
				// lost a first-sign-in race; use the row that won
				user, err = store.GetUserByEmail(email)
				if err != nil || user == nil {
					internalError(c, "failed to fetch user", err)
					return
				}
			}
		}

		token, err := utils.GenerateToken(user)
		if err != nil {
			internalError(c, "failed to generate token", err)
			return
		}

		c.JSON(200, gin.H{"token": token, "user": user})
	}
}

// usernameFromEmail derives a default username for first-time Firebase
// sign-ins.
func usernameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// GetProfile returns the authenticated user's record.
func GetProfile(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		user, err := store.GetUser(userID)
		if err != nil {
			internalError(c, "failed to fetch user", err)
			return
		}
		if user == nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, user)
	}
}
