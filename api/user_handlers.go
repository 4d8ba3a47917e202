package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbet/service"
)

type syncUserRequest struct {
	AuthID      string `json:"auth_id" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

func (s *Server) syncUser(c *gin.Context) {
	var req syncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.users.SyncUser(c.Request.Context(), service.SyncUserInput{
		AuthID:      req.AuthID,
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), c.Param("auth_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	PhotoURL    *string `json:"photo_url"`
}

func (s *Server) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.users.UpdateUser(c.Request.Context(), c.Param("auth_id"), service.UpdateUserInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) searchUsers(c *gin.Context) {
	results, err := s.users.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}
