package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel-friend/api/apperr"
	"travel-friend/api/ledger"
	"travel-friend/api/logger"
	"travel-friend/api/models"
	"travel-friend/api/mongodb"
	"travel-friend/api/notify"
	"travel-friend/api/splitter"
)

type CreateExpenseRequest struct {
	GroupID      string                 `json:"groupId" binding:"required"`
	Description  string                 `json:"description" binding:"required"`
	Amount       float64                `json:"amount" binding:"required"`
	Currency     string                 `json:"currency"`
	Category     models.ExpenseCategory `json:"category"`
	SplitBetween []string               `json:"splitBetween"`
	CustomSplits []splitter.CustomShare `json:"customSplits"`
	SplitMethod  models.SplitMethod     `json:"splitMethod"`
	PaidBy       string                 `json:"paidBy"`
}

type UpdateExpenseRequest struct {
	Description *string                 `json:"description"`
	Amount      *float64                `json:"amount"`
	Category    *models.ExpenseCategory `json:"category"`
}

type UpdateExpenseStatusRequest struct {
	Status models.ExpenseStatus `json:"status" binding:"required"`
}

// CreateExpense computes the split, persists the expense together with the
// group total update, then fans out payment requests. Notification outcomes
// ride along in the 201 body; they never fail the request.
func CreateExpense(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}

	group, err := mongodb.GetGroupByID(c, req.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if group == nil {
		respondError(c, apperr.New(apperr.NotFound, "group %s not found", req.GroupID))
		return
	}
	if !group.IsApprovedMember(claims.Sub) {
		respondError(c, apperr.New(apperr.Forbidden, "only group members can add expenses"))
		return
	}

	paidBy := req.PaidBy
	if paidBy == "" {
		paidBy = claims.Sub
	}
	if !group.IsApprovedMember(paidBy) {
		respondError(c, apperr.New(apperr.Validation, "payer %s is not a member of the group", paidBy))
		return
	}

	category := req.Category
	if category == "" {
		category = models.CategoryOther
	}
	if !category.Valid() {
		respondError(c, apperr.New(apperr.Validation, "unknown category %q", category))
		return
	}

	method := req.SplitMethod
	if method == "" {
		method = models.SplitMethodEqual
	}
	participants := req.SplitBetween
	if method == models.SplitMethodEqual && len(participants) == 0 {
		participants = group.ApprovedMemberIDs()
	}

	splits, err := splitter.Compute(req.Amount, paidBy, method, participants, req.CustomSplits)
	if err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid split"))
		return
	}
	for _, s := range splits {
		if !group.IsApprovedMember(s.UserID) {
			respondError(c, apperr.New(apperr.Validation, "participant %s is not a member of the group", s.UserID))
			return
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	now := time.Now()
	expense := &models.Expense{
		ID:           uuid.New().String(),
		GroupID:      group.ID,
		Description:  req.Description,
		Amount:       req.Amount,
		Currency:     currency,
		Category:     category,
		PaidBy:       paidBy,
		Participants: participantIDs(splits),
		SplitMethod:  method,
		Splits:       splits,
		Status:       models.ExpenseStatusPending,
		SettledUsers: []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := mongodb.CreateExpense(c, expense); err != nil {
		respondError(c, err)
		return
	}
	logger.Get().Info("expense created",
		zap.String("expense_id", expense.ID),
		zap.String("group_id", group.ID),
		zap.Float64("amount", expense.Amount))

	paymentRequests := notify.ExpenseCreated(c, expense)

	summary := buildGroupSummary(c, group.ID)
	respond(c, http.StatusCreated, "Expense created successfully", gin.H{
		"expense":         expense,
		"splitDetails":    expense.Splits,
		"paymentRequests": paymentRequests,
		"summary":         summary,
	})
}

// GetExpensesByGroup lists a group's expenses, newest first.
func GetExpensesByGroup(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	group, err := requireGroupMember(c, c.Param("id"), claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}

	expenses, err := mongodb.GetExpensesByGroup(c, group.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	respond(c, http.StatusOK, "", gin.H{"expenses": expenses, "count": len(expenses)})
}

// GetGroupSummary recomputes balances, category totals and suggested
// settlements from the full expense set on every request.
func GetGroupSummary(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	group, err := requireGroupMember(c, c.Param("id"), claims.Sub)
	if err != nil {
		respondError(c, err)
		return
	}

	expenses, err := mongodb.GetExpensesByGroup(c, group.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	summary := ledger.BuildSummary(group, expenses)
	respond(c, http.StatusOK, "", gin.H{"summary": summary})
}

// SettleExpense marks one participant's share as paid back. Only the payer
// may settle participants.
func SettleExpense(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	expense, err := requireExpense(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if claims.Sub != expense.PaidBy {
		respondError(c, apperr.New(apperr.Forbidden, "only the payer can settle participants"))
		return
	}

	userID := c.Param("userId")
	if err := ledger.Settle(expense, userID, time.Now()); err != nil {
		respondError(c, err)
		return
	}
	if err := mongodb.SaveSettlement(c, expense); err != nil {
		respondError(c, err)
		return
	}
	logger.Get().Info("participant settled",
		zap.String("expense_id", expense.ID),
		zap.String("user_id", userID),
		zap.String("status", string(expense.Status)))

	notifications := notify.SettlementRecorded(c, expense, userID)
	respond(c, http.StatusOK, "Settlement recorded", gin.H{
		"expense":       expense,
		"notifications": notifications,
	})
}

// UpdateExpenseStatus applies an explicit status change, constrained by the
// settlement state machine.
func UpdateExpenseStatus(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateExpenseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}

	expense, err := requireExpense(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireExpenseAdmin(c, expense, claims.Sub); err != nil {
		respondError(c, err)
		return
	}
	if err := ledger.ValidateTransition(expense.Status, req.Status); err != nil {
		respondError(c, err)
		return
	}

	expense.Status = req.Status
	expense.UpdatedAt = time.Now()
	updates := map[string]interface{}{"status": expense.Status, "updated_at": expense.UpdatedAt}
	if err := mongodb.UpdateExpenseFields(c, expense.ID, updates); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Expense status updated", gin.H{"expense": expense})
}

// UpdateExpense applies administrative edits. Amount edits are only allowed
// while the expense is pending; shares are rescaled proportionally and the
// group total adjusted in the same transaction.
func UpdateExpense(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Wrap(err, apperr.Validation, "invalid request body"))
		return
	}

	expense, err := requireExpense(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireExpenseAdmin(c, expense, claims.Sub); err != nil {
		respondError(c, err)
		return
	}

	if req.Description != nil {
		if *req.Description == "" {
			respondError(c, apperr.New(apperr.Validation, "description cannot be empty"))
			return
		}
		expense.Description = *req.Description
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			respondError(c, apperr.New(apperr.Validation, "unknown category %q", *req.Category))
			return
		}
		expense.Category = *req.Category
	}

	var amountDelta float64
	if req.Amount != nil && *req.Amount != expense.Amount {
		if expense.Status != models.ExpenseStatusPending {
			respondError(c, apperr.New(apperr.Validation, "amount can only change while the expense is pending"))
			return
		}
		rescaled, err := splitter.Rescale(expense.Splits, expense.Amount, *req.Amount, expense.PaidBy)
		if err != nil {
			respondError(c, apperr.Wrap(err, apperr.Validation, "invalid amount"))
			return
		}
		amountDelta = *req.Amount - expense.Amount
		expense.Amount = *req.Amount
		expense.Splits = rescaled
	}

	expense.UpdatedAt = time.Now()
	if err := mongodb.SaveExpenseEdit(c, expense, amountDelta); err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Expense updated", gin.H{"expense": expense})
}

// DeleteExpense removes the expense and decrements the group's running
// total, floored at zero.
func DeleteExpense(c *gin.Context) {
	claims, ok := currentUser(c)
	if !ok {
		return
	}

	expense, err := requireExpense(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := requireExpenseAdmin(c, expense, claims.Sub); err != nil {
		respondError(c, err)
		return
	}

	if err := mongodb.DeleteExpense(c, expense); err != nil {
		respondError(c, err)
		return
	}
	logger.Get().Info("expense deleted",
		zap.String("expense_id", expense.ID),
		zap.String("group_id", expense.GroupID))
	respond(c, http.StatusOK, "Expense deleted", nil)
}

func participantIDs(splits []models.SplitShare) []string {
	ids := make([]string, 0, len(splits))
	for _, s := range splits {
		ids = append(ids, s.UserID)
	}
	return ids
}

func requireExpense(c *gin.Context, expenseID string) (*models.Expense, error) {
	expense, err := mongodb.GetExpenseByID(c, expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, apperr.New(apperr.NotFound, "expense %s not found", expenseID)
	}
	return expense, nil
}

func requireGroupMember(c *gin.Context, groupID, userID string) (*models.Group, error) {
	group, err := mongodb.GetGroupByID(c, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.New(apperr.NotFound, "group %s not found", groupID)
	}
	if !group.IsApprovedMember(userID) {
		return nil, apperr.New(apperr.Forbidden, "not a member of group %s", groupID)
	}
	return group, nil
}

// requireExpenseAdmin allows the payer or the group creator to administer an
// expense.
func requireExpenseAdmin(c *gin.Context, expense *models.Expense, userID string) error {
	if userID == expense.PaidBy {
		return nil
	}
	group, err := mongodb.GetGroupByID(c, expense.GroupID)
	if err != nil {
		return err
	}
	if group != nil && group.CreatorID == userID {
		return nil
	}
	return apperr.New(apperr.Forbidden, "only the payer or group creator can modify this expense")
}

func buildGroupSummary(c *gin.Context, groupID string) *ledger.Summary {
	group, err := mongodb.GetGroupByID(c, groupID)
	if err != nil || group == nil {
		return nil
	}
	expenses, err := mongodb.GetExpensesByGroup(c, groupID)
	if err != nil {
		logger.Get().Warn("failed to build summary",
			zap.String("group_id", groupID),
			zap.Error(err))
		return nil
	}
	summary := ledger.BuildSummary(group, expenses)
	return &summary
}
