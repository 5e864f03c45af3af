// Package policy evaluates route role requirements with an embedded OPA policy.
package policy

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
	"github.com/open-policy-agent/opa/rego"
)

//go:embed policies/roles.rego
var rolePolicy string

const roleQuery = "data.cpt.authz.allow"

// RoleInput is the document the role policy is evaluated against
type RoleInput struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	RequiredRole string `json:"required_role"`
}

// RoleEvaluator holds the prepared role query
type RoleEvaluator struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewRoleEvaluator compiles the embedded role policy
func NewRoleEvaluator(ctx context.Context) (*RoleEvaluator, error) {
	return newRoleEvaluator(ctx, rolePolicy)
}

func newRoleEvaluator(ctx context.Context, module string) (*RoleEvaluator, error) {
	r := rego.New(
		rego.Query(roleQuery),
		rego.Module("roles.rego", module),
	)

	pq, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare role policy: %w", err)
	}

	slog.Debug("Role policy loaded", "query", roleQuery)
	return &RoleEvaluator{preparedQuery: pq}, nil
}

// AllowRole reports whether user satisfies the required role.
// An undefined policy result is a denial.
func (e *RoleEvaluator) AllowRole(ctx context.Context, user *models.AuthenticatedUser, required models.Role) (bool, error) {
	if user == nil {
		return false, nil
	}

	input := RoleInput{
		UserID:       user.UserID,
		Role:         user.Role.String(),
		RequiredRole: required.String(),
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("policy evaluation failed: %w", err)
	}
	return results.Allowed(), nil
}
