package policy

import (
	"context"
	"testing"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleEvaluator_AllowRole(t *testing.T) {
	evaluator, err := NewRoleEvaluator(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     *models.AuthenticatedUser
		required models.Role
		want     bool
	}{
		{"admin on admin route", &models.AuthenticatedUser{UserID: "a1", Role: models.RoleAdmin}, models.RoleAdmin, true},
		{"user on admin route", &models.AuthenticatedUser{UserID: "u1", Role: models.RoleUser}, models.RoleAdmin, false},
		{"user on user route", &models.AuthenticatedUser{UserID: "u1", Role: models.RoleUser}, models.RoleUser, true},
		{"unknown role matching itself", &models.AuthenticatedUser{UserID: "x1", Role: models.Role("superuser")}, models.Role("superuser"), false},
		{"empty role", &models.AuthenticatedUser{UserID: "x2"}, models.RoleAdmin, false},
		{"no user", nil, models.RoleUser, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := evaluator.AllowRole(context.Background(), tt.user, tt.required)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestNewRoleEvaluator_InvalidModule(t *testing.T) {
	_, err := newRoleEvaluator(context.Background(), "package cpt.authz\n\nallow if {")
	assert.Error(t, err)
}
