package models

import "testing"

func TestVerificationStatusValid(t *testing.T) {
	valid := []VerificationStatus{VerificationUnverified, VerificationVerified, VerificationRejected}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("%q 应当是合法状态", s)
		}
	}

	invalid := []VerificationStatus{"", "pending", "approved", "UNVERIFIED"}
	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("%q 不应当是合法状态", s)
		}
	}
}

func TestVerificationStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from VerificationStatus
		to   VerificationStatus
		want bool
	}{
		{"未审核可通过", VerificationUnverified, VerificationVerified, true},
		{"未审核可驳回", VerificationUnverified, VerificationRejected, true},
		{"未审核不能原地流转", VerificationUnverified, VerificationUnverified, false},
		{"已通过是终态", VerificationVerified, VerificationRejected, false},
		{"已通过不能回到未审核", VerificationVerified, VerificationUnverified, false},
		{"已驳回是终态", VerificationRejected, VerificationVerified, false},
		{"已驳回不能回到未审核", VerificationRejected, VerificationUnverified, false},
		{"不能流转到非法状态", VerificationUnverified, VerificationStatus("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
