package handler

import (
	"net/http"
	"strconv"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProposalHandler 分成提案处理器
type ProposalHandler struct {
	proposalLogic *logic.ProposalLogic
	collabLogic   *logic.CollaboratorLogic
}

// NewProposalHandler 创建分成提案处理器
func NewProposalHandler(db *gorm.DB) *ProposalHandler {
	return &ProposalHandler{
		proposalLogic: logic.NewProposalLogic(db),
		collabLogic:   logic.NewCollaboratorLogic(db),
	}
}

// CreateSplitProposal 创建分成提案
func (h *ProposalHandler) CreateSplitProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	proposal, err := h.proposalLogic.CreateSplitProposal(logic.CreateSplitProposalInput{
		ProjectId:    req.ProjectId,
		ProposedBy:   req.ProposedBy,
		ProposedRule: req.ProposedRule,
		VotingRule:   req.VotingRule,
		Description:  req.Description,
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "提案已创建", gin.H{
		"proposal_id": proposal.Id,
		"expires_at":  proposal.ExpiresAt,
	})
}

// CastVote 对提案投票
func (h *ProposalHandler) CastVote(c *gin.Context) {
	proposalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提案ID")
		return
	}

	var req CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	vote, err := h.proposalLogic.CastVote(proposalID, req.VoterId, req.Vote, req.Reason)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "投票已记录", gin.H{
		"vote_id": vote.Id,
	})
}

// EvaluateProposal 结算提案投票结果
func (h *ProposalHandler) EvaluateProposal(c *gin.Context) {
	proposalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提案ID")
		return
	}

	var req EvaluateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的请求参数: "+err.Error())
		return
	}

	result, err := h.proposalLogic.EvaluateProposal(proposalID, req.RequesterUserId)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, result.Message, result)
}

// GetProposalWithVotes 获取提案详情与计票统计
func (h *ProposalHandler) GetProposalWithVotes(c *gin.Context) {
	proposalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的提案ID")
		return
	}

	detail, err := h.proposalLogic.GetProposalWithVotes(proposalID)
	if err != nil {
		ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", detail)
}

// GetProjectCollaborators 获取项目协作者列表
func (h *ProposalHandler) GetProjectCollaborators(c *gin.Context) {
	projectID := c.Param("id")
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, "项目ID不能为空")
		return
	}

	collaborators, err := h.collabLogic.ListCollaborators(projectID)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"collaborators": collaborators,
		"count":         len(collaborators),
	})
}
