package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestScopeForAdminAlwaysUnrestricted(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"boss": strPtr("Ballito"),
	}, true)

	scope := policy.ScopeFor("boss", true)
	assert.False(t, scope.Restricted)
	assert.False(t, scope.Denied)
}

func TestScopeForMappedUserRestricted(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"frontdesk": strPtr("Ballito"),
	}, false)

	scope := policy.ScopeFor("frontdesk", false)
	assert.True(t, scope.Restricted)
	assert.Equal(t, "Ballito", scope.PracticeName)
}

func TestScopeForNilMappingMeansUnrestricted(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"owner": nil,
	}, true)

	scope := policy.ScopeFor("owner", false)
	assert.False(t, scope.Restricted)
	assert.False(t, scope.Denied)
}

func TestScopeForUnlistedUserLegacyUnrestricted(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"frontdesk": strPtr("Ballito"),
	}, false)

	scope := policy.ScopeFor("someone-else", false)
	assert.False(t, scope.Restricted)
	assert.False(t, scope.Denied)
}

func TestScopeForUnlistedUserDefaultDeny(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"frontdesk": strPtr("Ballito"),
	}, true)

	scope := policy.ScopeFor("someone-else", false)
	assert.True(t, scope.Denied)
}

func TestScopeForEmptyPracticeNameUnrestricted(t *testing.T) {
	policy := NewAccessPolicy(map[string]*string{
		"owner": strPtr(""),
	}, true)

	scope := policy.ScopeFor("owner", false)
	assert.False(t, scope.Restricted)
	assert.False(t, scope.Denied)
}
