package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ordersvc/order-dispatch/internal/users"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// registerUserRoutes wires the user CRUD surface onto the router.
func registerUserRoutes(r *gin.Engine, store *users.Store) {
	r.GET("/users", func(c *gin.Context) {
		list, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_users_failed"})
			return
		}
		c.JSON(http.StatusOK, list)
	})

	r.GET("/users/:id", func(c *gin.Context) {
		user, err := store.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_user_failed"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusOK, user)
	})

	r.POST("/users", func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name and email are required"})
			return
		}
		user, err := store.Create(c.Request.Context(), users.User{
			UserID: uuid.NewString(),
			Name:   req.Name,
			Email:  req.Email,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_user_failed"})
			return
		}
		c.JSON(http.StatusOK, user)
	})

	r.PUT("/users/:id", func(c *gin.Context) {
		var req updateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request_body"})
			return
		}
		user, err := store.Update(c.Request.Context(), c.Param("id"), users.UpdateUserInput{
			Name:  req.Name,
			Email: req.Email,
		})
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_user_failed"})
			return
		}
		c.JSON(http.StatusOK, user)
	})

	r.DELETE("/users/:id", func(c *gin.Context) {
		err := store.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_user_failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	})
}
