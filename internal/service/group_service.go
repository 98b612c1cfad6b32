package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// Ensure GroupService implements the generated handler interface
var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	engine *ledger.Engine
}

// NewGroupService creates a new GroupService backed by the ledger engine.
func NewGroupService(engine *ledger.Engine) *GroupService {
	return &GroupService{engine: engine}
}

// CreateGroup creates a new group with its initial members.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	members := make([]ledger.MemberInput, 0, len(req.Msg.Members))
	for _, m := range req.Msg.Members {
		if m == nil {
			continue
		}
		members = append(members, ledger.MemberInput{Name: m.Name, Email: m.Email})
	}

	details, err := s.engine.CreateGroup(ctx, req.Msg.Name, members)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.CreateGroupResponse{
		Group: toAPIGroup(details.Group, details.Members),
	}), nil
}

// GetGroup retrieves a group and its members by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	details, err := s.engine.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group: toAPIGroup(details.Group, details.Members),
	}), nil
}

// ListGroups retrieves all groups, newest first. Members are not included.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	groups, err := s.engine.ListGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	apiGroups := make([]*api.Group, len(groups))
	for i, group := range groups {
		apiGroups[i] = toAPIGroup(group, nil)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: apiGroups}), nil
}

// DeleteGroup removes a group and everything it owns.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.engine.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a person to a group by email, creating the user if needed.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID)

	var in ledger.MemberInput
	if req.Msg.Member != nil {
		in = ledger.MemberInput{Name: req.Msg.Member.Name, Email: req.Msg.Member.Email}
	}

	user, added, err := s.engine.AddMember(ctx, req.Msg.GroupID, in)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddMemberResponse{
		User:  toAPIUser(user),
		Added: added,
	}), nil
}

// RemoveMember removes a member and erases their debts in the group.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	slog.Info("RemoveMember request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
	)

	removed, err := s.engine.RemoveMember(ctx, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RemoveMemberResponse{BalancesRemoved: removed}), nil
}

// GetGroupBalances returns every member's net position, in join order.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	result, err := s.engine.ComputeNetBalances(ctx, req.Msg.GroupID, req.Msg.NetCounterparties)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	balances := make([]*api.MemberBalance, len(result.Members))
	for i, member := range result.Members {
		balances[i] = toAPIMemberBalance(member, result.Balances[member.ID])
	}

	return connect.NewResponse(&api.GetGroupBalancesResponse{Balances: balances}), nil
}
