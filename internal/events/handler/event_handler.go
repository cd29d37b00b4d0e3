package handler

import (
	"net/http"
	"time"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
	"github.com/wso2/web-analytics-service/internal/events/model"
	"github.com/wso2/web-analytics-service/internal/events/provider"
	"github.com/wso2/web-analytics-service/internal/system/constants"
	"github.com/wso2/web-analytics-service/internal/system/utils"
)

type EventHandler struct{}

func NewEventHandler() *EventHandler {

	return &EventHandler{}
}

// GetEvents serves both realtime polling (since_timestamp) and cursor
// pagination (before_timestamp / page_size) over the event list.
func (eh *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {

	siteID := utils.SiteFromContext(r)
	query := r.URL.Query()

	filters, err := filter.ParseFilters(query.Get("filters"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	eventsService := provider.NewEventsProvider().GetEventQueryService()

	// Mode A: poll for new events since a timestamp.
	if since := query.Get("since_timestamp"); since != "" {
		sinceTime, err := utils.ParseTimestamp(since)
		if err != nil {
			utils.HandleError(w, err)
			return
		}

		events, err := eventsService.PollSince(r.Context(), siteID, sinceTime, filters)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		utils.WriteJSONResponse(w, struct {
			Data []model.Event `json:"data"`
		}{Data: events})
		return
	}

	// Mode B: cursor pagination, newest first.
	rng, err := timerange.Resolve(query.Get("start_date"), query.Get("end_date"), query.Get("time_zone"), "")
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	pageSize, err := utils.QueryInt(r, "page_size", constants.DefaultPageSize)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var before *time.Time
	if raw := query.Get("before_timestamp"); raw != "" {
		t, err := utils.ParseTimestamp(raw)
		if err != nil {
			utils.HandleError(w, err)
			return
		}
		before = &t
	}

	page, err := eventsService.CursorPage(r.Context(), siteID, filters, rng, before, pageSize)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, page)
}

// GetEventCount serves bucketed per-type event counts.
func (eh *EventHandler) GetEventCount(w http.ResponseWriter, r *http.Request) {

	siteID := utils.SiteFromContext(r)
	query := r.URL.Query()

	bucket := query.Get("bucket")
	if bucket == "" {
		bucket = string(timerange.BucketDay)
	}

	rng, err := timerange.Resolve(query.Get("start_date"), query.Get("end_date"), query.Get("time_zone"), bucket)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	filters, err := filter.ParseFilters(query.Get("filters"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	eventsService := provider.NewEventsProvider().GetEventQueryService()
	counts, err := eventsService.BucketedCount(r.Context(), siteID, filters, rng)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, struct {
		Data []model.BucketCount `json:"data"`
	}{Data: counts})
}
