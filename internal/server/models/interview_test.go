package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterviewStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to InterviewStatus
		want     bool
	}{
		{InterviewPending, InterviewCompleted, true},
		{InterviewPending, InterviewCancelled, true},
		{InterviewPending, InterviewPending, false},
		{InterviewCompleted, InterviewCancelled, false},
		{InterviewCancelled, InterviewCompleted, false},
		{InterviewPending, "archived", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleCandidate.Valid())
	assert.True(t, RoleEmployer.Valid())
	assert.False(t, Role("user").Valid())
	assert.False(t, Role("").Valid())
}
