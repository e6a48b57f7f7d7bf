package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PayoutHandler 提现处理器
type PayoutHandler struct {
	payoutLogic *logic.PayoutLogic
}

// NewPayoutHandler 创建提现处理器
func NewPayoutHandler(db *gorm.DB) *PayoutHandler {
	return &PayoutHandler{
		payoutLogic: logic.NewPayoutLogic(db),
	}
}

// CreatePayoutRequest 创建提现申请
func (h *PayoutHandler) CreatePayoutRequest(c *gin.Context) {
	var req CreatePayoutRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.RequestAmount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的申请金额: "+req.RequestAmount)
		return
	}

	request, err := h.payoutLogic.CreatePayoutRequest(req.UserId, req.EscrowAccountId, amount, req.Reason)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "提现申请已创建", gin.H{
		"request_id": request.Id,
		"expires_at": request.ExpiresAt,
	})
}

// ReviewPayoutRequest 审核提现申请（管理员操作）
func (h *PayoutHandler) ReviewPayoutRequest(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的申请ID")
		return
	}

	var req ReviewPayoutRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	if err := h.payoutLogic.ReviewPayoutRequest(requestID, req.Approved, req.Notes); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "审核完成", nil)
}

// RegisterPayoutMethod 登记提现方式
func (h *PayoutHandler) RegisterPayoutMethod(c *gin.Context) {
	var req RegisterPayoutMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	method, err := h.payoutLogic.RegisterPayoutMethod(req.UserId, req.MethodType, req.Metadata, req.IsPrimary)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "提现方式已登记", gin.H{
		"method_id": method.Id,
	})
}

// ListPayoutMethods 获取用户提现方式列表
func (h *PayoutHandler) ListPayoutMethods(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		ErrorResponse(c, http.StatusBadRequest, "用户ID不能为空")
		return
	}

	methods, err := h.payoutLogic.ListPayoutMethods(userID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"methods": methods,
	})
}

// ProcessPayout 发起提现
func (h *PayoutHandler) ProcessPayout(c *gin.Context) {
	var req ProcessPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提现金额: "+req.Amount)
		return
	}

	payout, err := h.payoutLogic.ProcessPayout(logic.ProcessPayoutInput{
		PayoutRequestId: req.PayoutRequestId,
		UserId:          req.UserId,
		EscrowAccountId: req.EscrowAccountId,
		PayoutMethodId:  req.PayoutMethodId,
		Amount:          amount,
	})
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "提现已发起", gin.H{
		"payout_id": payout.Id,
		"status":    payout.Status,
	})
}

// CompletePayout 标记提现完成（由外部支付确认方调用）
func (h *PayoutHandler) CompletePayout(c *gin.Context) {
	payoutID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提现ID")
		return
	}

	// 请求体全部字段可选，允许空body
	var req CompletePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	if err := h.payoutLogic.CompletePayout(payoutID, req.ExternalTransactionId); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "提现已完成", nil)
}

// FailPayout 标记提现失败并回退资金
func (h *PayoutHandler) FailPayout(c *gin.Context) {
	payoutID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提现ID")
		return
	}

	// 请求体全部字段可选，允许空body
	var req FailPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	if err := h.payoutLogic.FailPayout(payoutID, req.FailureReason); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "提现已标记失败，资金已回退", nil)
}

// GetPayoutHistory 获取用户提现历史
func (h *PayoutHandler) GetPayoutHistory(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		ErrorResponse(c, http.StatusBadRequest, "用户ID不能为空")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	payouts, err := h.payoutLogic.GetPayoutHistory(userID, limit)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"payouts": payouts,
		"count":   len(payouts),
	})
}
