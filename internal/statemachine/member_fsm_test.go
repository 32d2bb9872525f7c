package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycmovement/membership-api/internal/models"
)

func TestApproveFromPending(t *testing.T) {
	member := &models.Member{Status: models.MemberStatusPending}
	fsm := NewMemberFSM(member)

	require.NoError(t, fsm.Approve(context.Background()))
	assert.Equal(t, models.MemberStatusApproved, member.Status)
	assert.Equal(t, models.MemberStatusApproved, fsm.Current())
}

func TestApproveFromRejected(t *testing.T) {
	member := &models.Member{Status: models.MemberStatusRejected}
	fsm := NewMemberFSM(member)

	require.NoError(t, fsm.Approve(context.Background()))
	assert.Equal(t, models.MemberStatusApproved, member.Status)
}

func TestApproveFromApprovedFails(t *testing.T) {
	member := &models.Member{Status: models.MemberStatusApproved}
	fsm := NewMemberFSM(member)

	assert.Error(t, fsm.Approve(context.Background()))
	assert.Equal(t, models.MemberStatusApproved, member.Status)
}

func TestRejectFromPending(t *testing.T) {
	member := &models.Member{Status: models.MemberStatusPending}
	fsm := NewMemberFSM(member)

	require.NoError(t, fsm.Reject(context.Background()))
	assert.Equal(t, models.MemberStatusRejected, member.Status)
}

func TestRejectFromApprovedFails(t *testing.T) {
	member := &models.Member{Status: models.MemberStatusApproved}
	fsm := NewMemberFSM(member)

	assert.Error(t, fsm.Reject(context.Background()))
	assert.Equal(t, models.MemberStatusApproved, member.Status)
}

func TestRejectFromRejectedFails(t *testing.T) {
	member := &models.Member{Status: models.MemberStatusRejected}
	fsm := NewMemberFSM(member)

	assert.Error(t, fsm.Reject(context.Background()))
	assert.Equal(t, models.MemberStatusRejected, member.Status)
}
