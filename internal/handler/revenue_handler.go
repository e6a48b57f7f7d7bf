package handler

import (
	"net/http"
	"strconv"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RevenueHandler 收入事件处理器
type RevenueHandler struct {
	revenueLogic *logic.RevenueLogic
}

// NewRevenueHandler 创建收入事件处理器
func NewRevenueHandler(db *gorm.DB) *RevenueHandler {
	return &RevenueHandler{
		revenueLogic: logic.NewRevenueLogic(db),
	}
}

// RecordRevenueEvent 记录收入事件
func (h *RevenueHandler) RecordRevenueEvent(c *gin.Context) {
	var req RecordRevenueEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	grossAmount, err := decimal.NewFromString(req.GrossAmount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的总金额: "+req.GrossAmount)
		return
	}

	platformFee := decimal.Zero
	if req.PlatformFee != "" {
		platformFee, err = decimal.NewFromString(req.PlatformFee)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的平台手续费: "+req.PlatformFee)
			return
		}
	}

	// 调用logic层记录收入事件
	event, err := h.revenueLogic.RecordRevenueEvent(logic.RecordRevenueEventInput{
		SourceType:     req.SourceType,
		SourceId:       req.SourceId,
		GrossAmount:    grossAmount,
		PlatformFee:    platformFee,
		Currency:       req.Currency,
		ProjectId:      req.ProjectId,
		OrgId:          req.OrgId,
		Metadata:       req.Metadata,
		RequesterOrgId: c.GetHeader("X-Org-Id"),
	})
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "收入事件已记录", gin.H{
		"id":         event.Id,
		"net_amount": event.NetAmount.StringFixed(2),
	})
}

// GetRevenueEvent 获取收入事件详情
func (h *RevenueHandler) GetRevenueEvent(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的事件ID")
		return
	}

	event, err := h.revenueLogic.GetRevenueEvent(eventID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", event)
}

// GetProjectRevenueEvents 获取项目收入事件列表
func (h *RevenueHandler) GetProjectRevenueEvents(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	// 调用logic层获取项目收入事件
	events, total, err := h.revenueLogic.GetProjectRevenueEvents(projectID, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"events": events,
		"pagination": Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}
