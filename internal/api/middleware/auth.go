package middleware

import (
	"context"
	"net/http"
	"strings"

	"school_admin/internal/common"
	"school_admin/internal/common/security"
	"school_admin/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// EpochSource reports the unix time of the last term rotation. Tokens issued
// before it belong to invalidated sessions.
type EpochSource interface {
	Epoch(ctx context.Context) (int64, error)
}

// SessionEpochs is set once at bootstrap; nil disables the epoch check.
var SessionEpochs EpochSource

func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		userRole, err := security.GetUserRoleFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		if SessionEpochs != nil {
			issuedAt, err := security.GetIssuedAtFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			epoch, err := SessionEpochs.Epoch(r.Context())
			if err != nil {
				common.RespondWithError(w, http.StatusInternalServerError, "Session check failed")
				return
			}
			if issuedAt < epoch {
				common.RespondWithError(w, http.StatusUnauthorized, "Session expired, please log in again")
				return
			}
		}

		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		ctx = context.WithValue(ctx, UserRoleCtxKey, model.Role(userRole))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on a minimum role tier. Unknown or missing roles
// fail closed.
func RequireRole(min model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(UserRoleCtxKey).(model.Role)
			if !ok || !role.AtLeast(min) {
				common.RespondWithError(w, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Tier shorthands; principal implies teacher implies student for read breadth.
var (
	StudentTier   = RequireRole(model.RoleStudent)
	TeacherTier   = RequireRole(model.RoleTeacher)
	PrincipalOnly = RequireRole(model.RolePrincipal)
)

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// Helper to get user role from context
func GetUserRoleFromContext(ctx context.Context) (model.Role, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(model.Role)
	return userRole, ok
}
