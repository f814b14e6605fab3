package models

import "time"

type MemberStatus string

const (
	MemberStatusApproved MemberStatus = "approved"
	MemberStatusPending  MemberStatus = "pending"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

type Member struct {
	UserID   string       `json:"user_id" bson:"user_id"`
	Status   MemberStatus `json:"status" bson:"status"`
	JoinedAt time.Time    `json:"joined_at" bson:"joined_at"`
}

type JoinRequest struct {
	UserID      string        `json:"user_id" bson:"user_id"`
	Message     string        `json:"message,omitempty" bson:"message,omitempty"`
	Status      RequestStatus `json:"status" bson:"status"`
	RequestedAt time.Time     `json:"requested_at" bson:"requested_at"`
}

type Invitation struct {
	UserID    string        `json:"user_id" bson:"user_id"`
	InvitedBy string        `json:"invited_by" bson:"invited_by"`
	Status    RequestStatus `json:"status" bson:"status"`
	InvitedAt time.Time     `json:"invited_at" bson:"invited_at"`
}

// Group is a trip-planning collective with bounded membership. TotalExpenses
// is a running counter kept in step with the expenses collection inside the
// same transaction as each expense write.
type Group struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	Destination   string        `json:"destination,omitempty" bson:"destination,omitempty"`
	CreatorID     string        `json:"creator_id" bson:"creator_id"`
	Members       []Member      `json:"members" bson:"members"`
	JoinRequests  []JoinRequest `json:"join_requests" bson:"join_requests"`
	Invitations   []Invitation  `json:"invitations" bson:"invitations"`
	MaxMembers    int           `json:"max_members" bson:"max_members"`
	Budget        float64       `json:"budget,omitempty" bson:"budget,omitempty"`
	TotalExpenses float64       `json:"total_expenses" bson:"total_expenses"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

// IsApprovedMember reports whether userID is an approved member of the group.
// The creator is always a member.
func (g *Group) IsApprovedMember(userID string) bool {
	if userID == g.CreatorID {
		return true
	}
	for _, m := range g.Members {
		if m.UserID == userID && m.Status == MemberStatusApproved {
			return true
		}
	}
	return false
}

// ApprovedMemberIDs returns the ids of all approved members, creator included.
func (g *Group) ApprovedMemberIDs() []string {
	ids := []string{g.CreatorID}
	for _, m := range g.Members {
		if m.UserID != g.CreatorID && m.Status == MemberStatusApproved {
			ids = append(ids, m.UserID)
		}
	}
	return ids
}

// ApprovedMemberCount counts approved members, creator included.
func (g *Group) ApprovedMemberCount() int {
	return len(g.ApprovedMemberIDs())
}

// PendingRequest returns the pending join request for userID, if any.
func (g *Group) PendingRequest(userID string) *JoinRequest {
	for i := range g.JoinRequests {
		if g.JoinRequests[i].UserID == userID && g.JoinRequests[i].Status == RequestStatusPending {
			return &g.JoinRequests[i]
		}
	}
	return nil
}
