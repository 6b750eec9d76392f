package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kosarica/grooming-service/internal/report"
)

// RoleHeader names the header that carries the caller's staff role
const RoleHeader = "X-Staff-Role"

const roleKey = "staff_role"

// StaffRole reads X-Staff-Role into the context. Missing or unknown values
// resolve to the least privileged role.
func StaffRole() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(roleKey, report.ParseRole(c.GetHeader(RoleHeader)))
		c.Next()
	}
}

// RoleFrom returns the role set by StaffRole, or staff
func RoleFrom(c *gin.Context) report.Role {
	if v, ok := c.Get(roleKey); ok {
		if role, ok := v.(report.Role); ok {
			return role
		}
	}
	return report.RoleStaff
}
