package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/aquaflow/aquaflow-backend/internal/models"
	"github.com/aquaflow/aquaflow-backend/internal/services"
	"github.com/aquaflow/aquaflow-backend/internal/storage"
)

type createUserInput struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Role            string `json:"role" binding:"omitempty,oneof=resident driver admin"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// CreateUser registers a new user. Role defaults to resident and is
// immutable afterwards; there is no role-change endpoint.
func CreateUser(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input createUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, bindingErrors(err))
			return
		}

		user := &models.User{
			Username:        input.Username,
			Email:           input.Email,
			Password:        input.Password,
			FirstName:       input.FirstName,
			LastName:        input.LastName,
			Role:            input.Role,
			ProfileImageURL: input.ProfileImageURL,
		}
		if err := user.HashPassword(); err != nil {
			internalError(c, "failed to hash password", err)
			return
		}

		if err := store.CreateUser(user); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				c.JSON(409, gin.H{"error": "Username or email already taken"})
				return
			}
			internalError(c, "failed to create user", err)
			return
		}

		c.JSON(201, user)
	}
}

// GetUser looks up a single user by numeric id.
func GetUser(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}

		user, err := store.GetUser(id)
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

// GetUserByEmail looks up a single user by email.
func GetUserByEmail(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := store.GetUserByEmail(c.Param("email"))
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

// GetUserByUsername looks up a single user by username.
func GetUserByUsername(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := store.GetUserByUsername(c.Param("username"))
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

// GetUsersByRole lists users with the given role. Always 200; unknown roles
// simply match nothing.
func GetUsersByRole(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := store.GetUsersByRole(c.Param("role"))
		if err != nil {
			internalError(c, "failed to fetch users", err)
			return
		}

		c.JSON(200, users)
	}
}

// UploadProfileImage stores a profile image and records its URL on the
// authenticated user.
func UploadProfileImage(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(400, gin.H{"error": "image file is required"})
			return
		}

		user, err := store.GetUser(userID)
		if err != nil {
			internalError(c, "failed to fetch user", err)
			return
		}
		if user == nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		url, err := services.UploadImage(file, "profiles")
		if err != nil {
			internalError(c, "failed to store image", err)
			return
		}

		if _, err := store.SetUserProfileImage(userID, url); err != nil {
			internalError(c, "failed to update profile image", err)
			return
		}

		c.JSON(200, gin.H{"profileImageUrl": url})
	}
}
