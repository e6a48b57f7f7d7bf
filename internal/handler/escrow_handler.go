package handler

import (
	"net/http"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EscrowHandler 托管账户处理器
type EscrowHandler struct {
	escrowLogic *logic.EscrowLogic
}

// NewEscrowHandler 创建托管账户处理器
func NewEscrowHandler(db *gorm.DB) *EscrowHandler {
	return &EscrowHandler{
		escrowLogic: logic.NewEscrowLogic(db),
	}
}

// GetEscrowBalance 查询托管账户余额
func (h *EscrowHandler) GetEscrowBalance(c *gin.Context) {
	userID := c.Query("user_id")
	projectID := c.Query("project_id")
	if userID == "" || projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, "用户ID和项目ID不能为空")
		return
	}

	balance, err := h.escrowLogic.GetEscrowBalance(userID, projectID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"balance":         balance.Balance.StringFixed(2),
		"held_amount":     balance.HeldAmount.StringFixed(2),
		"released_amount": balance.ReleasedAmount.StringFixed(2),
	})
}

// DepositToEscrow 托管账户入账
func (h *EscrowHandler) DepositToEscrow(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的入账金额: "+req.Amount)
		return
	}

	if err := h.escrowLogic.DepositToEscrow(req.UserId, req.ProjectId, amount); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "入账成功", nil)
}
