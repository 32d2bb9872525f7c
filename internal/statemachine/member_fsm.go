package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/ycmovement/membership-api/internal/models"
)

// MemberFSM wraps a member application with its review state machine
type MemberFSM struct {
	member *models.Member
	fsm    *fsm.FSM
}

// NewMemberFSM creates a new member review state machine
func NewMemberFSM(member *models.Member) *MemberFSM {
	mfsm := &MemberFSM{
		member: member,
	}

	mfsm.fsm = fsm.NewFSM(
		member.Status,
		fsm.Events{
			// pending/rejected → approved (a rejected application may be reconsidered)
			{Name: "approve", Src: []string{models.MemberStatusPending, models.MemberStatusRejected}, Dst: models.MemberStatusApproved},

			// pending → rejected
			{Name: "reject", Src: []string{models.MemberStatusPending}, Dst: models.MemberStatusRejected},
		},
		fsm.Callbacks{},
	)

	return mfsm
}

// Approve transitions the application to approved state
func (m *MemberFSM) Approve(ctx context.Context) error {
	if !m.member.MayApprove() {
		return fmt.Errorf("application cannot be approved in current state: %s", m.member.Status)
	}

	if err := m.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve application: %w", err)
	}

	m.member.Status = m.fsm.Current()
	return nil
}

// Reject transitions the application to rejected state
func (m *MemberFSM) Reject(ctx context.Context) error {
	if !m.member.MayReject() {
		return fmt.Errorf("application cannot be rejected in current state: %s", m.member.Status)
	}

	if err := m.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject application: %w", err)
	}

	m.member.Status = m.fsm.Current()
	return nil
}

// Current returns the current state
func (m *MemberFSM) Current() string {
	return m.fsm.Current()
}
