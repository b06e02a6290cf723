package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntitlement(t *testing.T) {
	cases := []struct {
		name       string
		role       string
		department string
		want       string
	}{
		{"both absent", "", "", ""},
		{"admin role only", "admin", "", "ADMIN,basic"},
		{"supervisor role", "supervisor", "", "SUPERVISOR,basic"},
		{"manager role", "manager", "", "MANAGER,basic"},
		{"chat agent with underscore", "chat_agent", "", "CHAT_AGENT,basic"},
		{"chat agent with space", "Chat Agent", "", "CHAT_AGENT,basic"},
		{"unknown role falls back to agent", "teller", "", "AGENT,basic"},
		{"department keyword premier", "admin", "Premier Banking", "ADMIN,premier,basic"},
		{"department keyword retail", "chat_agent", "Retail Banking", "CHAT_AGENT,retail,basic"},
		{"department keyword wealth", "manager", "Global Wealth Management", "MANAGER,wealth,basic"},
		{"department keyword business", "agent", "Business Banking", "AGENT,business,basic"},
		{"department keyword cards", "agent", "Credit Cards", "AGENT,cards,basic"},
		{"department keyword digital", "agent", "Digital Channels", "AGENT,digital,basic"},
		{"department keyword experience", "agent", "Customer Experience", "AGENT,experience,basic"},
		{"unmatched department is slugified", "agent", "Fraud Ops & Recovery", "AGENT,fraud-ops-recovery,basic"},
		{"department only", "", "Retail Banking", "retail,basic"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Entitlement(tc.role, tc.department))
		})
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fraud-ops", slugify("  Fraud   Ops  "))
	assert.Equal(t, "a1-b2", slugify("A1/B2"))
	assert.Equal(t, "", slugify("---"))
}
