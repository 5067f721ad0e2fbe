package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"
	PermissionPayrollViewOwn Permission = "payroll.view_own"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Payroll Management
	PermissionPayrollViewAll Permission = "payroll.view_all"
	PermissionPayrollManage  Permission = "payroll.manage"

	// Dashboards
	PermissionDashboardAdmin    Permission = "dashboard.admin"
	PermissionDashboardEmployee Permission = "dashboard.employee"
)

// RolePermissions maps roles to their permissions.
// It is the seed for the casbin policy in pkg/rbac.
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionPayrollViewOwn,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionPayrollViewAll,
		PermissionPayrollManage,
		PermissionDashboardAdmin,
	},
	RoleEmployee: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionPayrollViewOwn,
		PermissionDashboardEmployee,
	},
}
