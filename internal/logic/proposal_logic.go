package logic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/logger"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProposalLogic 分成提案与投票业务逻辑
type ProposalLogic struct {
	db     *gorm.DB
	collab *CollaboratorLogic
}

// NewProposalLogic 创建分成提案业务逻辑
func NewProposalLogic(db *gorm.DB) *ProposalLogic {
	return &ProposalLogic{db: db, collab: NewCollaboratorLogic(db)}
}

// CreateSplitProposalInput 创建提案参数
type CreateSplitProposalInput struct {
	ProjectId    string
	ProposedBy   string
	ProposedRule map[string]float64
	VotingRule   string
	Description  string
	ExpiresAt    *time.Time
}

// CreateSplitProposal 创建分成规则变更提案
// 提案绕过管理员直接更新路径，因此比例校验用更严的容差。
// 合格投票人名单在创建时冻结，投票期内协作者变动不影响计票分母。
func (p *ProposalLogic) CreateSplitProposal(input CreateSplitProposalInput) (*model.SplitProposalModel, error) {
	if err := ValidateRule(input.ProposedRule, ProposalRuleTolerance); err != nil {
		return nil, err
	}
	if !model.ValidVotingRule(input.VotingRule) {
		return nil, fmt.Errorf("无效的投票规则: %s", input.VotingRule)
	}

	// 只有当前协作者可以发起提案
	isCollab, err := p.collab.IsCollaborator(input.ProjectId, input.ProposedBy)
	if err != nil {
		return nil, err
	}
	if !isCollab {
		return nil, errors.New("只有项目协作者可以发起分成提案")
	}

	// 冻结合格投票人快照
	collaborators, err := p.collab.ListCollaborators(input.ProjectId)
	if err != nil {
		return nil, err
	}
	voterIds := make([]string, 0, len(collaborators))
	for _, c := range collaborators {
		voterIds = append(voterIds, c.UserId)
	}
	votersRaw, err := json.Marshal(voterIds)
	if err != nil {
		return nil, fmt.Errorf("序列化投票人快照失败: %w", err)
	}

	ruleRaw, err := encodeRule(input.ProposedRule)
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(model.ProposalExpiry)
	if input.ExpiresAt != nil {
		expiresAt = *input.ExpiresAt
	}

	proposal := &model.SplitProposalModel{
		ProjectId:      input.ProjectId,
		ProposedBy:     input.ProposedBy,
		ProposedRule:   ruleRaw,
		VotingRule:     input.VotingRule,
		Status:         string(model.ProposalStatusPending),
		EligibleVoters: datatypes.JSON(votersRaw),
		ExpiresAt:      expiresAt,
		Description:    input.Description,
	}
	if err := p.db.Create(proposal).Error; err != nil {
		return nil, fmt.Errorf("创建提案失败: %w", err)
	}

	return proposal, nil
}

// CastVote 对提案投票
// 每人每提案一票，由唯一索引兜底；预检只是为了给出友好错误。
func (p *ProposalLogic) CastVote(proposalId int64, voterId, vote, reason string) (*model.SplitVoteModel, error) {
	if !model.ValidVoteChoice(vote) {
		return nil, fmt.Errorf("无效的投票选项: %s", vote)
	}

	proposal, err := p.getProposal(proposalId)
	if err != nil {
		return nil, err
	}

	if proposal.Status != string(model.ProposalStatusPending) {
		return nil, fmt.Errorf("提案已是终态: %s", proposal.Status)
	}
	if time.Now().After(proposal.ExpiresAt) {
		return nil, errors.New("提案投票期已结束")
	}

	// 投票人必须在创建时的快照内，且当前仍是协作者
	eligible, err := decodeVoters(proposal.EligibleVoters)
	if err != nil {
		return nil, err
	}
	if !containsVoter(eligible, voterId) {
		return nil, errors.New("不在本提案的合格投票人名单内")
	}
	isCollab, err := p.collab.IsCollaborator(proposal.ProjectId, voterId)
	if err != nil {
		return nil, err
	}
	if !isCollab {
		return nil, errors.New("只有项目协作者可以投票")
	}

	// 预检重复投票
	var existing model.SplitVoteModel
	err = p.db.Where("proposal_id = ? AND voter_id = ?", proposalId, voterId).
		First(&existing).Error
	if err == nil {
		return nil, errors.New("已经对该提案投过票")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("查询投票记录失败: %w", err)
	}

	record := &model.SplitVoteModel{
		ProposalId: proposalId,
		VoterId:    voterId,
		Vote:       vote,
		Reason:     reason,
	}
	if err := p.db.Create(record).Error; err != nil {
		// 并发重复投票被唯一索引拦下
		if isDuplicateKeyError(err) {
			return nil, errors.New("已经对该提案投过票")
		}
		return nil, fmt.Errorf("记录投票失败: %w", err)
	}

	return record, nil
}

// EvaluateResult 提案计票结果
type EvaluateResult struct {
	Approved      bool   `json:"approved"`
	TotalVotes    int    `json:"total_votes"`
	ApproveCount  int    `json:"approve_count"`
	RejectCount   int    `json:"reject_count"`
	TotalEligible int    `json:"total_eligible"`
	SplitVersion  int    `json:"split_version,omitempty"`
	Message       string `json:"message"`
}

// EvaluateProposal 结算提案投票结果
// 已决提案幂等返回既有结论。通过的提案在同一事务内安装新分成规则，
// 规则安装失败时状态更新一并回滚，提案保持 pending。
func (p *ProposalLogic) EvaluateProposal(proposalId int64, requesterUserId string) (*EvaluateResult, error) {
	proposal, err := p.getProposal(proposalId)
	if err != nil {
		return nil, err
	}

	approveCount, rejectCount, err := p.countVotes(proposalId)
	if err != nil {
		return nil, err
	}
	totalVotes := approveCount + rejectCount

	eligible, err := decodeVoters(proposal.EligibleVoters)
	if err != nil {
		return nil, err
	}
	totalEligible := len(eligible)
	if totalEligible == 0 {
		totalEligible = 1
	}

	// 已决提案：直接返回既有结论，不重新计票改状态
	if proposal.Status != string(model.ProposalStatusPending) {
		return &EvaluateResult{
			Approved:      proposal.Status == string(model.ProposalStatusApproved),
			TotalVotes:    totalVotes,
			ApproveCount:  approveCount,
			RejectCount:   rejectCount,
			TotalEligible: totalEligible,
			Message:       fmt.Sprintf("提案已是终态: %s", proposal.Status),
		}, nil
	}

	approved := false
	switch model.VotingRule(proposal.VotingRule) {
	case model.VotingRuleUnanimous:
		// 每位合格投票人都必须明确赞成，仅“无人反对”不算通过
		approved = totalVotes > 0 && rejectCount == 0 && approveCount == totalEligible
	case model.VotingRuleMajority:
		// 合格席位的严格过半，而不是已投票数的过半
		approved = approveCount > totalEligible/2
	}

	result := &EvaluateResult{
		Approved:      approved,
		TotalVotes:    totalVotes,
		ApproveCount:  approveCount,
		RejectCount:   rejectCount,
		TotalEligible: totalEligible,
	}

	newStatus := model.ProposalStatusRejected
	if approved {
		newStatus = model.ProposalStatusApproved
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		// 状态条件写在 UPDATE 里，并发结算只有一个会成功
		res := tx.Model(&model.SplitProposalModel{}).
			Where("id = ? AND status = ?", proposalId, model.ProposalStatusPending).
			Update("status", string(newStatus))
		if res.Error != nil {
			return fmt.Errorf("更新提案状态失败: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return errors.New("提案已被并发结算")
		}

		if approved {
			rule, err := decodeRule(proposal.ProposedRule)
			if err != nil {
				return err
			}
			version, err := applyRevenueSplit(tx, proposal.ProjectId, rule, requesterUserId)
			if err != nil {
				return fmt.Errorf("安装新分成规则失败: %w", err)
			}
			result.SplitVersion = version
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if approved {
		result.Message = fmt.Sprintf("提案已通过，新分成规则版本 %d 已生效", result.SplitVersion)
		logger.Info("Split proposal %d approved for project %s, installed split version %d", proposalId, proposal.ProjectId, result.SplitVersion)
	} else {
		required := totalEligible
		if model.VotingRule(proposal.VotingRule) == model.VotingRuleMajority {
			required = totalEligible/2 + 1
		}
		result.Message = fmt.Sprintf("提案未通过，赞成 %d，反对 %d，需要 %d", approveCount, rejectCount, required)
	}

	return result, nil
}

// ProposalWithVotes 提案详情聚合
type ProposalWithVotes struct {
	Proposal      model.SplitProposalModel `json:"proposal"`
	Votes         []model.SplitVoteModel   `json:"votes"`
	ApproveCount  int                      `json:"approve_count"`
	RejectCount   int                      `json:"reject_count"`
	TotalVotes    int                      `json:"total_votes"`
	TotalEligible int                      `json:"total_eligible"`
}

// GetProposalWithVotes 获取提案详情与计票统计
func (p *ProposalLogic) GetProposalWithVotes(proposalId int64) (*ProposalWithVotes, error) {
	proposal, err := p.getProposal(proposalId)
	if err != nil {
		return nil, err
	}

	var votes []model.SplitVoteModel
	if err := p.db.Where("proposal_id = ?", proposalId).
		Order("created_at ASC").
		Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("获取投票记录失败: %w", err)
	}

	approveCount := 0
	rejectCount := 0
	for _, v := range votes {
		if v.Vote == string(model.VoteApprove) {
			approveCount++
		} else {
			rejectCount++
		}
	}

	eligible, err := decodeVoters(proposal.EligibleVoters)
	if err != nil {
		return nil, err
	}

	return &ProposalWithVotes{
		Proposal:      *proposal,
		Votes:         votes,
		ApproveCount:  approveCount,
		RejectCount:   rejectCount,
		TotalVotes:    approveCount + rejectCount,
		TotalEligible: len(eligible),
	}, nil
}

// getProposal 获取提案
func (p *ProposalLogic) getProposal(proposalId int64) (*model.SplitProposalModel, error) {
	var proposal model.SplitProposalModel
	if err := p.db.First(&proposal, proposalId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("提案不存在")
		}
		return nil, fmt.Errorf("查询提案失败: %w", err)
	}
	return &proposal, nil
}

// countVotes 统计提案赞成与反对票数
func (p *ProposalLogic) countVotes(proposalId int64) (int, int, error) {
	var approveCount, rejectCount int64
	if err := p.db.Model(&model.SplitVoteModel{}).
		Where("proposal_id = ? AND vote = ?", proposalId, model.VoteApprove).
		Count(&approveCount).Error; err != nil {
		return 0, 0, fmt.Errorf("统计赞成票失败: %w", err)
	}
	if err := p.db.Model(&model.SplitVoteModel{}).
		Where("proposal_id = ? AND vote = ?", proposalId, model.VoteReject).
		Count(&rejectCount).Error; err != nil {
		return 0, 0, fmt.Errorf("统计反对票失败: %w", err)
	}
	return int(approveCount), int(rejectCount), nil
}

// decodeVoters 解析投票人快照
func decodeVoters(raw datatypes.JSON) ([]string, error) {
	var voters []string
	if err := json.Unmarshal(raw, &voters); err != nil {
		return nil, fmt.Errorf("解析投票人快照失败: %w", err)
	}
	return voters, nil
}

// containsVoter 判断投票人是否在快照内
func containsVoter(voters []string, voterId string) bool {
	for _, v := range voters {
		if v == voterId {
			return true
		}
	}
	return false
}

// isDuplicateKeyError 判断是否为唯一约束冲突
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
