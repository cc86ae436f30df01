// internal/app/features/auditlog/types.go
package auditlog

import (
	"slices"
	"time"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
)

// listItem is one audit event with actor and target names resolved.
type listItem struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Category   string            `json:"category"`
	EventType  string            `json:"eventType"`
	ActorID    string            `json:"actorId,omitempty"`
	ActorName  string            `json:"actorName,omitempty"`
	TargetID   string            `json:"userId,omitempty"`
	TargetName string            `json:"userName,omitempty"`
	IP         string            `json:"ip"`
	Success    bool              `json:"success"`
	Reason     string            `json:"failureReason,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

type categoryOption struct {
	Value      string   `json:"value"`
	Label      string   `json:"label"`
	EventTypes []string `json:"eventTypes"`
}

var (
	authEvents = []string{
		audit.EventSignup,
		audit.EventLoginSuccess,
		audit.EventLoginFailedUserNotFound,
		audit.EventLoginFailedWrongPassword,
		audit.EventLoginFailedRateLimit,
		audit.EventPasswordChanged,
		audit.EventPasswordResetRequested,
		audit.EventPasswordResetOTPFailed,
		audit.EventPasswordReset,
	}
	adminEvents = []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventProductCreated,
		audit.EventProductUpdated,
		audit.EventProductDeleted,
	}
	orderEvents = []string{
		audit.EventOrderPlaced,
		audit.EventOrderStatusChanged,
	}
)

// allCategories returns the available categories for filtering.
func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication", EventTypes: authEvents},
		{Value: audit.CategoryAdmin, Label: "Administration", EventTypes: adminEvents},
		{Value: audit.CategoryOrder, Label: "Orders", EventTypes: orderEvents},
	}
}

// eventTypesForCategory returns the event types for a given category.
// An empty category returns every event type; an unknown one returns nil.
func eventTypesForCategory(category string) []string {
	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case audit.CategoryOrder:
		return orderEvents
	case "":
		return slices.Concat(authEvents, adminEvents, orderEvents)
	default:
		return nil
	}
}
