package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel-friend/api/apperr"
	"travel-friend/api/logger"
	"travel-friend/api/models"
	"travel-friend/api/mongodb"
	"travel-friend/api/notify"
)

type CreateGroupRequest struct {
	Name        string  `json:"name" binding:"required"`
	Destination string  `json:"destination"`
	MaxMembers  int     `json:"maxMembers"`
	Budget      float64 `json:"budget"`
}

type JoinGroupRequest struct {
	Message string `json:"message"`
}

type InviteRequest struct {
	UserID string `json:"userId" binding:"required"`
}

const defaultMaxMembers = 10

func CreateGroup(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}
	if req.MaxMembers < 0 {
		respondError(c, apperr.New(apperr.Validation, "maxMembers cannot be negative"))
		return
	}
	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = defaultMaxMembers
	}

	now := time.Now()
	group := &models.Group{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Destination: req.Destination,
		CreatorID:   claims.Sub,
		Members: []models.Member{
			{UserID: claims.Sub, Status: models.MemberStatusApproved, JoinedAt: now},
		},
		JoinRequests: []models.JoinRequest{},
		Invitations:  []models.Invitation{},
		MaxMembers:   maxMembers,
		Budget:       req.Budget,
		CreatedAt:    now,
	}

	if err := mongodb.EnsureUser(c, claims.Sub, claims.Name, claims.Email, now); err != nil {
		respondError(c, err)
		return
	}
	if err := mongodb.CreateGroup(c, group); err != nil {
		respondError(c, err)
		return
	}
	logger.Get().Info("group created",
		zap.String("group_id", group.ID),
		zap.String("creator_id", claims.Sub))
	respond(c, http.StatusCreated, "Group created successfully", gin.H{"group": group})
}

// GetGroup returns a group to any authenticated user, so non-members can see
// it before requesting to join.
func GetGroup(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	group, err := mongodb.GetGroupByID(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if group == nil {
		respondError(c, apperr.New(apperr.NotFound, "group %s not found", c.Param("id")))
		return
	}
	respond(c, http.StatusOK, "", gin.H{"group": group})
}

func GetGroups(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	groups, err := mongodb.GetGroupsForUser(c, claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	respond(c, http.StatusOK, "", gin.H{"groups": groups, "count": len(groups)})
}

// JoinGroup files a join request; membership starts only after the creator
// approves.
func JoinGroup(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}

	group, err := mongodb.GetGroupByID(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if group == nil {
		respondError(c, apperr.New(apperr.NotFound, "group %s not found", c.Param("id")))
		return
	}
	if group.IsApprovedMember(claims.Sub) {
		respondError(c, apperr.New(apperr.Conflict, "already a member of this group"))
		return
	}
	if group.PendingRequest(claims.Sub) != nil {
		respondError(c, apperr.New(apperr.Conflict, "join request already pending"))
		return
	}

	now := time.Now()
	if err := mongodb.EnsureUser(c, claims.Sub, claims.Name, claims.Email, now); err != nil {
		respondError(c, err)
		return
	}
	request := models.JoinRequest{
		UserID:      claims.Sub,
		Message:     req.Message,
		Status:      models.RequestStatusPending,
		RequestedAt: now,
	}
	if err := mongodb.AddJoinRequest(c, group.ID, request); err != nil {
		respondError(c, err)
		return
	}

	notify.JoinRequested(c, group, claims.Sub)
	respond(c, http.StatusCreated, "Join request submitted", gin.H{"request": request})
}

// ApproveJoinRequest admits a pending requester, enforcing the member cap.
func ApproveJoinRequest(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	group, userID, err := requirePendingRequest(c, claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}
	if group.ApprovedMemberCount() >= group.MaxMembers {
		respondError(c, apperr.New(apperr.Validation, "group is full (%d members max)", group.MaxMembers))
		return
	}

	if err := mongodb.ApproveJoinRequest(c, group.ID, userID, time.Now()); err != nil {
		respondError(c, err)
		return
	}
	logger.Get().Info("join request approved",
		zap.String("group_id", group.ID),
		zap.String("user_id", userID))

	notify.JoinDecided(c, group, userID, true)
	respond(c, http.StatusOK, "Join request approved", nil)
}

func RejectJoinRequest(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	group, userID, err := requirePendingRequest(c, claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := mongodb.RejectJoinRequest(c, group.ID, userID); err != nil {
		respondError(c, err)
		return
	}

	notify.JoinDecided(c, group, userID, false)
	respond(c, http.StatusOK, "Join request rejected", nil)
}

// InviteToGroup records an invitation from an approved member.
func InviteToGroup(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}

	group, err := requireGroupMember(c, c.Param("id"), claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}
	if group.IsApprovedMember(req.UserID) {
		respondError(c, apperr.New(apperr.Conflict, "user is already a member"))
		return
	}

	invitation := models.Invitation{
		UserID:    req.UserID,
		InvitedBy: claims.Sub,
		Status:    models.RequestStatusPending,
		InvitedAt: time.Now(),
	}
	if err := mongodb.AddInvitation(c, group.ID, invitation); err != nil {
		respondError(c, err)
		return
	}

	notify.Invited(c, group, req.UserID, claims.Sub)
	respond(c, http.StatusCreated, "Invitation sent", gin.H{"invitation": invitation})
}

// requirePendingRequest loads the group, checks the caller is its creator
// and that the target user has a pending join request.
func requirePendingRequest(c *gin.Context, callerID string) (*models.Group, string, error) {
	group, err := mongodb.GetGroupByID(c, c.Param("id"))
	if err != nil {
		return nil, "", err
	}
	if group == nil {
		return nil, "", apperr.New(apperr.NotFound, "group %s not found", c.Param("id"))
	}
	if group.CreatorID != callerID {
		return nil, "", apperr.New(apperr.Forbidden, "only the group creator can decide join requests")
	}

	userID := c.Param("userId")
	if group.PendingRequest(userID) == nil {
		return nil, "", apperr.New(apperr.NotFound, "no pending join request for user %s", userID)
	}
	return group, userID, nil
}
