package logic

import (
	"testing"
	"time"

	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/model"
)

func seedProposal(t *testing.T, p *ProposalLogic, projectId, proposedBy, votingRule string, rule map[string]float64) *model.SplitProposalModel {
	t.Helper()

	proposal, err := p.CreateSplitProposal(CreateSplitProposalInput{
		ProjectId:    projectId,
		ProposedBy:   proposedBy,
		ProposedRule: rule,
		VotingRule:   votingRule,
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	return proposal
}

func TestCreateSplitProposal(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))
	seedCollaborator(t, db, "p1", "bob", string(model.CollaboratorRoleDeveloper))

	proposal := seedProposal(t, proposals, "p1", "alice", string(model.VotingRuleUnanimous),
		map[string]float64{"alice": 0.7, "bob": 0.3})

	if proposal.Status != string(model.ProposalStatusPending) {
		t.Fatalf("status = %s, want pending", proposal.Status)
	}
	if proposal.ExpiresAt.Before(time.Now()) {
		t.Fatalf("default expiry should be in the future")
	}

	// 投票人快照在创建时冻结
	detail, err := proposals.GetProposalWithVotes(proposal.Id)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if detail.TotalEligible != 2 {
		t.Fatalf("total eligible = %d, want 2", detail.TotalEligible)
	}
}

func TestCreateSplitProposalValidation(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))

	// 非协作者不能发起提案
	_, err := proposals.CreateSplitProposal(CreateSplitProposalInput{
		ProjectId:    "p1",
		ProposedBy:   "mallory",
		ProposedRule: map[string]float64{"mallory": 1.0},
		VotingRule:   string(model.VotingRuleMajority),
	})
	if err == nil {
		t.Fatalf("expected error for non-collaborator proposer")
	}

	// 提案路径的比例容差比管理路径更严
	_, err = proposals.CreateSplitProposal(CreateSplitProposalInput{
		ProjectId:    "p1",
		ProposedBy:   "alice",
		ProposedRule: map[string]float64{"alice": 0.5, "bob": 0.495},
		VotingRule:   string(model.VotingRuleMajority),
	})
	if err == nil {
		t.Fatalf("expected error for fractions outside strict tolerance")
	}

	_, err = proposals.CreateSplitProposal(CreateSplitProposalInput{
		ProjectId:    "p1",
		ProposedBy:   "alice",
		ProposedRule: map[string]float64{"alice": 1.0},
		VotingRule:   "plurality",
	})
	if err == nil {
		t.Fatalf("expected error for invalid voting rule")
	}
}

func TestCastVote(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))
	seedCollaborator(t, db, "p1", "bob", string(model.CollaboratorRoleDeveloper))

	proposal := seedProposal(t, proposals, "p1", "alice", string(model.VotingRuleMajority),
		map[string]float64{"alice": 0.5, "bob": 0.5})

	vote, err := proposals.CastVote(proposal.Id, "alice", string(model.VoteApprove), "fair deal")
	if err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if vote.Vote != string(model.VoteApprove) {
		t.Fatalf("vote = %s, want approve", vote.Vote)
	}

	// 一人一票
	if _, err := proposals.CastVote(proposal.Id, "alice", string(model.VoteReject), ""); err == nil {
		t.Fatalf("expected error for duplicate vote")
	}

	// 无效选项
	if _, err := proposals.CastVote(proposal.Id, "bob", "abstain", ""); err == nil {
		t.Fatalf("expected error for invalid vote choice")
	}

	// 快照外的用户不能投票
	if _, err := proposals.CastVote(proposal.Id, "mallory", string(model.VoteApprove), ""); err == nil {
		t.Fatalf("expected error for voter outside snapshot")
	}
}

func TestCastVoteExpiredProposal(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))

	past := time.Now().Add(-time.Hour)
	proposal, err := proposals.CreateSplitProposal(CreateSplitProposalInput{
		ProjectId:    "p1",
		ProposedBy:   "alice",
		ProposedRule: map[string]float64{"alice": 1.0},
		VotingRule:   string(model.VotingRuleUnanimous),
		ExpiresAt:    &past,
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	if _, err := proposals.CastVote(proposal.Id, "alice", string(model.VoteApprove), ""); err == nil {
		t.Fatalf("expected error voting on expired proposal")
	}
}

func TestVoterSnapshotFrozenAtCreation(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))
	seedCollaborator(t, db, "p1", "bob", string(model.CollaboratorRoleDeveloper))

	proposal := seedProposal(t, proposals, "p1", "alice", string(model.VotingRuleUnanimous),
		map[string]float64{"alice": 0.5, "bob": 0.5})

	// 创建后加入的协作者不在快照内，不能投票也不计入分母
	seedCollaborator(t, db, "p1", "carol", string(model.CollaboratorRoleDesigner))
	if _, err := proposals.CastVote(proposal.Id, "carol", string(model.VoteApprove), ""); err == nil {
		t.Fatalf("expected error for collaborator added after snapshot")
	}

	// 快照内但已被移除的协作者也不能投票
	if err := db.Model(&model.ProjectCollaboratorModel{}).
		Where("project_id = ? AND user_id = ?", "p1", "bob").
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate collaborator: %v", err)
	}
	if _, err := proposals.CastVote(proposal.Id, "bob", string(model.VoteApprove), ""); err == nil {
		t.Fatalf("expected error for deactivated collaborator")
	}

	detail, err := proposals.GetProposalWithVotes(proposal.Id)
	if err != nil {
		t.Fatalf("get proposal: %v", err)
	}
	if detail.TotalEligible != 2 {
		t.Fatalf("total eligible = %d, want frozen snapshot of 2", detail.TotalEligible)
	}
}

func TestEvaluateProposalUnanimous(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	split := NewSplitLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))
	seedCollaborator(t, db, "p1", "bob", string(model.CollaboratorRoleDeveloper))

	rule := map[string]float64{"alice": 0.7, "bob": 0.3}

	// 只有一人赞成：全体一致要求每位合格投票人都明确赞成
	partial := seedProposal(t, proposals, "p1", "alice", string(model.VotingRuleUnanimous), rule)
	if _, err := proposals.CastVote(partial.Id, "alice", string(model.VoteApprove), ""); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	result, err := proposals.EvaluateProposal(partial.Id, "alice")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Approved {
		t.Fatalf("unanimous proposal approved with missing votes")
	}
	if _, err := split.GetActiveSplit("p1"); err == nil {
		t.Fatalf("rejected proposal must not install a split")
	}

	// 全员赞成：通过并安装新规则
	full := seedProposal(t, proposals, "p1", "alice", string(model.VotingRuleUnanimous), rule)
	if _, err := proposals.CastVote(full.Id, "alice", string(model.VoteApprove), ""); err != nil {
		t.Fatalf("alice vote: %v", err)
	}
	if _, err := proposals.CastVote(full.Id, "bob", string(model.VoteApprove), ""); err != nil {
		t.Fatalf("bob vote: %v", err)
	}
	result, err = proposals.EvaluateProposal(full.Id, "alice")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Approved {
		t.Fatalf("unanimous proposal with all approvals should pass: %s", result.Message)
	}
	if result.SplitVersion != 1 {
		t.Fatalf("installed split version = %d, want 1", result.SplitVersion)
	}

	active, err := split.GetActiveSplit("p1")
	if err != nil {
		t.Fatalf("get active split: %v", err)
	}
	installed, err := decodeRule(active.Rule)
	if err != nil {
		t.Fatalf("decode installed rule: %v", err)
	}
	if installed["alice"] != 0.7 || installed["bob"] != 0.3 {
		t.Fatalf("installed rule = %v, want proposed rule", installed)
	}
}

func TestEvaluateProposalMajority(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, u := range users {
		seedCollaborator(t, db, "p1", u, string(model.CollaboratorRoleDeveloper))
	}

	rule := map[string]float64{"u1": 0.2, "u2": 0.2, "u3": 0.2, "u4": 0.2, "u5": 0.2}
	proposal := seedProposal(t, proposals, "p1", "u1", string(model.VotingRuleMajority), rule)

	// 5人中3人赞成、1人反对：过半即通过
	for _, u := range users[:3] {
		if _, err := proposals.CastVote(proposal.Id, u, string(model.VoteApprove), ""); err != nil {
			t.Fatalf("%s vote: %v", u, err)
		}
	}
	if _, err := proposals.CastVote(proposal.Id, "u4", string(model.VoteReject), ""); err != nil {
		t.Fatalf("u4 vote: %v", err)
	}

	result, err := proposals.EvaluateProposal(proposal.Id, "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Approved {
		t.Fatalf("majority proposal with 3/5 approvals should pass: %s", result.Message)
	}
	if result.ApproveCount != 3 || result.RejectCount != 1 || result.TotalEligible != 5 {
		t.Fatalf("counts = %d/%d of %d, want 3/1 of 5", result.ApproveCount, result.RejectCount, result.TotalEligible)
	}
}

func TestEvaluateProposalMajorityNotReached(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	for _, u := range users {
		seedCollaborator(t, db, "p1", u, string(model.CollaboratorRoleDeveloper))
	}

	rule := map[string]float64{"u1": 0.2, "u2": 0.2, "u3": 0.2, "u4": 0.2, "u5": 0.2}
	proposal := seedProposal(t, proposals, "p1", "u1", string(model.VotingRuleMajority), rule)

	// 2人赞成不过半：分母是合格席位数而不是已投票数
	for _, u := range users[:2] {
		if _, err := proposals.CastVote(proposal.Id, u, string(model.VoteApprove), ""); err != nil {
			t.Fatalf("%s vote: %v", u, err)
		}
	}

	result, err := proposals.EvaluateProposal(proposal.Id, "u1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Approved {
		t.Fatalf("2/5 approvals must not pass a majority vote")
	}
}

func TestEvaluateProposalIdempotent(t *testing.T) {
	db := newTestDB(t)
	proposals := NewProposalLogic(db)
	split := NewSplitLogic(db)
	seedCollaborator(t, db, "p1", "alice", string(model.CollaboratorRoleCreator))

	proposal := seedProposal(t, proposals, "p1", "alice", string(model.VotingRuleUnanimous),
		map[string]float64{"alice": 1.0})
	if _, err := proposals.CastVote(proposal.Id, "alice", string(model.VoteApprove), ""); err != nil {
		t.Fatalf("cast vote: %v", err)
	}

	first, err := proposals.EvaluateProposal(proposal.Id, "alice")
	if err != nil {
		t.Fatalf("first evaluate: %v", err)
	}
	if !first.Approved {
		t.Fatalf("proposal should pass: %s", first.Message)
	}

	// 重复结算幂等返回既有结论，不安装新版本
	second, err := proposals.EvaluateProposal(proposal.Id, "alice")
	if err != nil {
		t.Fatalf("second evaluate: %v", err)
	}
	if !second.Approved {
		t.Fatalf("second evaluate should report approved")
	}

	active, err := split.GetActiveSplit("p1")
	if err != nil {
		t.Fatalf("get active split: %v", err)
	}
	if active.SplitVersion != 1 {
		t.Fatalf("active version = %d, want 1 (no double install)", active.SplitVersion)
	}
}
