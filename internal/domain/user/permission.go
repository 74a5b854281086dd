package user

type Permission string

const (
	// Employee directory
	PermissionEmployeeView   Permission = "employee.view"
	PermissionEmployeeManage Permission = "employee.manage"

	// Attendance
	PermissionAttendanceView   Permission = "attendance.view"
	PermissionAttendanceRecord Permission = "attendance.record"
	PermissionAbsenceManage    Permission = "absence.manage"
	PermissionAbsenceSweep     Permission = "absence.sweep"

	// Leave
	PermissionLeaveView    Permission = "leave.view"
	PermissionLeaveCreate  Permission = "leave.create"
	PermissionLeaveApprove Permission = "leave.approve"

	// Operator accounts
	PermissionUserManage Permission = "user.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionEmployeeView,
		PermissionEmployeeManage,
		PermissionAttendanceView,
		PermissionAttendanceRecord,
		PermissionAbsenceManage,
		PermissionAbsenceSweep,
		PermissionLeaveView,
		PermissionLeaveCreate,
		PermissionLeaveApprove,
		PermissionUserManage,
	},
	RoleUser: {
		PermissionEmployeeView,
		PermissionAttendanceView,
		PermissionAttendanceRecord,
		PermissionAbsenceManage,
		PermissionLeaveView,
		PermissionLeaveCreate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
