package models

import "testing"

func TestCompanyStatusValid(t *testing.T) {
	for _, s := range []CompanyStatus{CompanyStatusPending, CompanyStatusVerified, CompanyStatusRejected} {
		if !s.Valid() {
			t.Errorf("%q 应当是合法状态", s)
		}
	}
	for _, s := range []CompanyStatus{"", "active", "Pending"} {
		if s.Valid() {
			t.Errorf("%q 不应当是合法状态", s)
		}
	}
}
