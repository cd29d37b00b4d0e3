package handler

import (
	"net/http"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
	"github.com/wso2/web-analytics-service/internal/system/constants"
	customerrors "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/utils"
	"github.com/wso2/web-analytics-service/internal/users/model"
	"github.com/wso2/web-analytics-service/internal/users/provider"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {

	return &UserHandler{}
}

// GetUsers serves the paginated per-user aggregate listing.
func (uh *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {

	siteID := utils.SiteFromContext(r)
	query := r.URL.Query()

	filters, err := filter.ParseFilters(query.Get("filters"))
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	rng, err := timerange.Resolve(query.Get("start_date"), query.Get("end_date"), query.Get("time_zone"), "")
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	page, err := utils.QueryInt(r, "page", 1)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	pageSize, err := utils.QueryInt(r, "page_size", constants.DefaultPageSize)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	req := &model.ListUsersRequest{
		Filters:        filters,
		Range:          rng,
		Page:           page,
		PageSize:       pageSize,
		SortBy:         query.Get("sort_by"),
		SortOrder:      query.Get("sort_order"),
		IdentifiedOnly: query.Get("identified_only") == "true",
		Search:         query.Get("search"),
		SearchField:    query.Get("search_field"),
	}

	usersService := provider.NewUsersProvider().GetUserAggregationService()
	list, err := usersService.ListUsers(r.Context(), siteID, req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, list)
}

// GetUsersByTrait serves the reverse trait lookup: identified users whose
// stored traits hold a given value under a given key.
func (uh *UserHandler) GetUsersByTrait(w http.ResponseWriter, r *http.Request) {

	siteID := utils.SiteFromContext(r)
	query := r.URL.Query()

	key := query.Get("key")
	value := query.Get("value")
	if key == "" || value == "" {
		utils.HandleError(w, customerrors.NewClientError(customerrors.ErrorMessage{
			Code:        customerrors.MISSING_PARAMETER.Code,
			Message:     customerrors.MISSING_PARAMETER.Message,
			Description: "Both key and value are required.",
		}, http.StatusBadRequest))
		return
	}

	limit, err := utils.QueryInt(r, "limit", constants.DefaultPageSize)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	offset, err := utils.QueryInt(r, "offset", 0)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	usersService := provider.NewUsersProvider().GetUserAggregationService()
	page, err := usersService.UsersByTrait(r.Context(), siteID, key, value, limit, offset)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, page)
}
