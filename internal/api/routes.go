package api

import "github.com/internhub/portal/internal/core/domain"

// PageRoute is one entry of the page route table. Public routes skip the
// gate; a protected route with no roles admits any signed-in user.
type PageRoute struct {
	Path   string
	Title  string
	Public bool
	Roles  []domain.Role
}

var (
	adminOnly    = []domain.Role{domain.RoleAdmin}
	employeeOnly = []domain.Role{domain.RoleEmployee}
)

// Pages is the portal's page route table.
var Pages = []PageRoute{
	{Path: domain.PathHome, Title: "Intern Portal", Public: true},
	{Path: domain.PathLogin, Title: "Sign in", Public: true},

	{Path: domain.PathAdmin, Title: "Dashboard", Roles: adminOnly},
	{Path: "/admin/interns", Title: "Interns", Roles: adminOnly},
	{Path: "/admin/interns/register", Title: "Register intern", Roles: adminOnly},
	{Path: "/admin/attendance", Title: "Attendance", Roles: adminOnly},
	{Path: "/admin/leave", Title: "Leave requests", Roles: adminOnly},
	{Path: "/admin/tasks", Title: "Tasks", Roles: adminOnly},
	{Path: "/admin/learning-hub", Title: "Learning hub", Roles: adminOnly},
	{Path: "/admin/diaries", Title: "Diaries", Roles: adminOnly},
	{Path: "/admin/notifications", Title: "Notifications", Roles: adminOnly},

	{Path: domain.PathEmployee, Title: "Dashboard", Roles: employeeOnly},
	{Path: "/employee/attendance", Title: "Attendance", Roles: employeeOnly},
	{Path: "/employee/leave", Title: "Leave", Roles: employeeOnly},
	{Path: "/employee/tasks", Title: "Tasks", Roles: employeeOnly},
	{Path: "/employee/learning-hub", Title: "Learning hub", Roles: employeeOnly},
	{Path: "/employee/diary", Title: "Diary", Roles: employeeOnly},
	{Path: "/employee/notifications", Title: "Notifications", Roles: employeeOnly},

	{Path: domain.PathProfile, Title: "Profile"},
	{Path: "/profile/password", Title: "Change password"},
}
