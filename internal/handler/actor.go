package handler

import (
	"net/http"
	"strings"

	"github.com/fieldworks/workorder-service/internal/policy"
	"github.com/gin-gonic/gin"
)

// actorFrom reads the authenticated caller from the X-Caller-Id and
// X-Caller-Role headers set by the identity provider in front of this
// service. Writes 401 and returns false when identity is missing or the role
// is unknown.
func actorFrom(c *gin.Context) (policy.Actor, bool) {
	id := strings.TrimSpace(c.GetHeader("X-Caller-Id"))
	role := policy.Role(strings.TrimSpace(c.GetHeader("X-Caller-Role")))
	if id == "" || !role.Valid() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity required (X-Caller-Id, X-Caller-Role)"})
		return policy.Actor{}, false
	}
	return policy.Actor{ID: id, Role: role}, true
}
