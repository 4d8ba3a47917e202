package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createGroupRequest struct {
	Name            string   `json:"name" binding:"required"`
	OwnerAuthID     string   `json:"owner_auth_id" binding:"required"`
	MemberUsernames []string `json:"member_usernames"`
}

func (s *Server) createGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := s.groups.CreateGroup(c.Request.Context(), req.Name, req.OwnerAuthID, req.MemberUsernames)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (s *Server) listGroups(c *gin.Context) {
	authID := c.Query("auth_id")
	if authID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "auth_id query parameter is required"})
		return
	}

	details, err := s.groups.ListGroups(c.Request.Context(), authID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": details})
}

func (s *Server) getGroup(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := s.groups.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type addMemberRequest struct {
	Username string `json:"username" binding:"required"`
}

func (s *Server) addGroupMember(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	detail, err := s.groups.AddMember(c.Request.Context(), groupID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) listGroupBets(c *gin.Context) {
	groupID, ok := pathID(c, "id")
	if !ok {
		return
	}

	details, err := s.bets.ListGroupBets(c.Request.Context(), groupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": details})
}

// pathID parses a numeric path parameter, writing a 400 on failure
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
