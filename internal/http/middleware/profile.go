package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abzalbek/gigdesk-ledger/internal/model"
)

const principalKey = "principal"

// ProfileResolver looks up the acting party's profile.
type ProfileResolver interface {
	ProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// Profile authenticates requests by the profile_id header: the header must
// carry the id of an existing profile, which becomes the request principal.
func Profile(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("profile_id")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing profile_id header"})
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid profile_id header"})
			return
		}

		profile, err := resolver.ProfileByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown profile"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(principalKey, model.Principal{ID: profile.ID, Type: profile.Type})
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, exists := c.Get(principalKey)
	if !exists {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}
