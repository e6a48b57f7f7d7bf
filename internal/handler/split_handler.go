package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SplitHandler 收入分成处理器
type SplitHandler struct {
	splitLogic *logic.SplitLogic
}

// NewSplitHandler 创建收入分成处理器
func NewSplitHandler(db *gorm.DB) *SplitHandler {
	return &SplitHandler{
		splitLogic: logic.NewSplitLogic(db),
	}
}

// ComputeRevenueSplits 按当前或指定时间点的规则计算分成
func (h *SplitHandler) ComputeRevenueSplits(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	var req ComputeSplitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	netAmount, err := decimal.NewFromString(req.NetAmount)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的净金额: "+req.NetAmount)
		return
	}

	at := time.Now()
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	allocations, splitVersion, err := h.splitLogic.ComputeRevenueSplits(projectID, netAmount, at)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"allocations":   allocations,
		"split_version": splitVersion,
	})
}

// UpdateRevenueSplit 创建新版本分成规则（管理路径）
func (h *SplitHandler) UpdateRevenueSplit(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	var req UpdateSplitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	version, err := h.splitLogic.UpdateRevenueSplit(projectID, req.Rule, req.CreatedBy)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "分成规则已更新", gin.H{
		"split_version": version,
	})
}

// GetActiveSplit 获取当前生效的分成规则
func (h *SplitHandler) GetActiveSplit(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	split, err := h.splitLogic.GetActiveSplit(projectID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", split)
}

// GetEventAllocations 获取收入事件的分配记录
func (h *SplitHandler) GetEventAllocations(c *gin.Context) {
	eventID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的事件ID")
		return
	}

	allocations, err := h.splitLogic.GetEventAllocations(eventID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"allocations": allocations,
	})
}
