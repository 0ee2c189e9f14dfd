package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/rosca_backend/models"
	"bitbucket.org/mmdatafocus/rosca_backend/utils"
	"bitbucket.org/mmdatafocus/rosca_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateMember registers a new member. Admin only.
func CreateMember(c *gin.Context) {
	role, _ := utils.GetRoleFromContext(c.Request.Context())
	if role != string(models.UserRoleAdmin) {
		respondError(c, "member.go", "CreateMember", utils.ErrorForbidden)
		return
	}

	var input models.NewMember
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	member, err := models.CreateMember(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "member.go", "CreateMember", err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// ListMembers returns the full membership roster.
func ListMembers(c *gin.Context) {
	members, err := utils.FetchModelsWhere[models.Member](c.Request.Context(), "1 = 1")
	if err != nil {
		respondError(c, "member.go", "ListMembers", err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// GetMember returns one member record.
func GetMember(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	member, err := models.GetMember(c.Request.Context(), id)
	if err != nil {
		respondError(c, "member.go", "GetMember", err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// CreateGroup registers a new group. Admin only.
func CreateGroup(c *gin.Context) {
	role, _ := utils.GetRoleFromContext(c.Request.Context())
	if role != string(models.UserRoleAdmin) {
		respondError(c, "member.go", "CreateGroup", utils.ErrorForbidden)
		return
	}

	var input models.NewGroup
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	group, err := models.CreateGroup(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "member.go", "CreateGroup", err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// AddGroupMember enrolls a member into a group, creating backdated
// contributions when they join mid-cycle.
func AddGroupMember(c *gin.Context) {
	groupId, ok := pathId(c, "id")
	if !ok {
		return
	}

	var input models.NewGroupMember
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := workflow.AddGroupMember(c.Request.Context(), groupId, &input)
	if err != nil {
		respondError(c, "member.go", "AddGroupMember", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetGroupMembers lists a group's active membership in rotation order.
func GetGroupMembers(c *gin.Context) {
	groupId, ok := pathId(c, "id")
	if !ok {
		return
	}

	if _, err := models.GetGroup(c.Request.Context(), groupId); err != nil {
		respondError(c, "member.go", "GetGroupMembers", err)
		return
	}
	members, err := models.GetActiveGroupMembers(c.Request.Context(), groupId)
	if err != nil {
		respondError(c, "member.go", "GetGroupMembers", err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// CalculateBenefit returns the mid-cycle benefit estimate for a member at a
// given week and caches it on the membership record.
func CalculateBenefit(c *gin.Context) {
	groupId, ok := pathId(c, "id")
	if !ok {
		return
	}
	memberId, ok := pathId(c, "memberId")
	if !ok {
		return
	}
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil || week < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}

	estimate, err := workflow.CalculateBenefit(c.Request.Context(), groupId, memberId, week)
	if err != nil {
		respondError(c, "member.go", "CalculateBenefit", err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}
