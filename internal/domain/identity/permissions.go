package identity

import (
	"github.com/samber/lo"

	"github.com/labcore/lis/internal/platform/auth"
)

// Permissions lists every screen permission. Admins get all of them.
var Permissions = []string{
	"dashboard", "create-test", "all-tests", "create-user", "all-users",
	"references", "referral-reports", "edit-lab-info", "finance-analytics",
	"user-analytics", "test-analytics", "patient-analytics", "inventory",
	"expenses", "revenue-summary", "register-patients", "reg-reports",
	"payments", "results", "final-reports",
}

var rolePermissions = map[string][]string{
	auth.RoleAdmin: Permissions,
	auth.RoleSeniorReceptionist: {
		"dashboard", "revenue-summary", "expenses", "inventory",
		"register-patients", "reg-reports", "payments", "final-reports",
	},
	auth.RoleJuniorReceptionist: {
		"dashboard", "register-patients", "reg-reports", "results", "final-reports",
	},
	auth.RoleSeniorLabTech: {"dashboard", "reg-reports", "results", "final-reports"},
	auth.RoleJuniorLabTech: {"dashboard", "reg-reports", "results", "final-reports"},
}

// DefaultPermissions returns a fresh copy of the permissions a new user of
// role starts with.
func DefaultPermissions(role string) []string {
	return append([]string{}, rolePermissions[role]...)
}

// unknownPermissions returns the entries of perms that are not recognised.
func unknownPermissions(perms []string) []string {
	return lo.Without(perms, Permissions...)
}
