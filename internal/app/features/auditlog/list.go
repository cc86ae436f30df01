// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dalemusser/slothstore/internal/app/store/audit"
	"github.com/dalemusser/slothstore/internal/app/system/httpx"
	"github.com/dalemusser/slothstore/internal/app/system/paging"
	"github.com/dalemusser/slothstore/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ServeList handles GET /api/audit.
//
// Query parameters: category, event_type, user (ObjectID), start_date and
// end_date (YYYY-MM-DD, end inclusive), page, limit. Events come back
// newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))

	types := eventTypesForCategory(category)
	if types == nil {
		httpx.Fail(w, http.StatusBadRequest, "Unknown audit category")
		return
	}
	if eventType != "" && !slices.Contains(types, eventType) {
		httpx.Fail(w, http.StatusBadRequest, "Unknown event type for this category")
		return
	}

	page := paging.ParsePage(r)
	limit := paging.ParseLimit(r)
	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Limit:     int64(limit),
		Offset:    paging.Offset(page, limit),
	}

	if raw := strings.TrimSpace(q.Get("user")); raw != "" {
		uid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid user id")
			return
		}
		filter.UserID = &uid
	}
	if raw := strings.TrimSpace(q.Get("start_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartTime = &t
	}
	if raw := strings.TrimSpace(q.Get("end_date")); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "query audit events", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		httpx.ServerError(w, r, h.Log, "count audit events", err)
		return
	}

	// One lookup for every actor and target on the page.
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, e := range events {
		for _, id := range []*primitive.ObjectID{e.ActorID, e.UserID} {
			if id == nil {
				continue
			}
			if _, dup := seen[*id]; !dup {
				seen[*id] = struct{}{}
				ids = append(ids, *id)
			}
		}
	}
	names, err := h.Users.Usernames(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		names = nil
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:        e.ID.Hex(),
			Timestamp: e.Timestamp,
			Category:  e.Category,
			EventType: e.EventType,
			IP:        e.IP,
			Success:   e.Success,
			Reason:    e.FailureReason,
			Details:   e.Details,
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.Hex()
			item.ActorName = names[*e.ActorID]
		}
		if e.UserID != nil {
			item.TargetID = e.UserID.Hex()
			item.TargetName = names[*e.UserID]
		}
		items = append(items, item)
	}

	httpx.Success(w, http.StatusOK, map[string]any{
		"results": len(items),
		"events":  items,
		"paging":  paging.Compute(page, limit, total),
	})
}

// ServeCategories handles GET /api/audit/categories.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	httpx.Success(w, http.StatusOK, map[string]any{"categories": allCategories()})
}
