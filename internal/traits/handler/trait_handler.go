package handler

import (
	"net/http"

	"github.com/wso2/web-analytics-service/internal/system/constants"
	customerrors "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/utils"
	"github.com/wso2/web-analytics-service/internal/traits/model"
	"github.com/wso2/web-analytics-service/internal/traits/provider"
)

type TraitHandler struct{}

func NewTraitHandler() *TraitHandler {

	return &TraitHandler{}
}

// GetTraitKeys serves the distinct trait keys in use for a site.
func (th *TraitHandler) GetTraitKeys(w http.ResponseWriter, r *http.Request) {

	siteID := utils.SiteFromContext(r)

	traitService := provider.NewTraitsProvider().GetTraitIndexService()
	keys, err := traitService.ListKeys(r.Context(), siteID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, struct {
		Data []model.TraitKey `json:"data"`
	}{Data: keys})
}

// GetTraitValues serves the paginated distinct values of one trait key.
func (th *TraitHandler) GetTraitValues(w http.ResponseWriter, r *http.Request) {

	siteID := utils.SiteFromContext(r)
	query := r.URL.Query()

	key := query.Get("key")
	if key == "" {
		utils.HandleError(w, customerrors.NewClientError(customerrors.ErrorMessage{
			Code:        customerrors.MISSING_PARAMETER.Code,
			Message:     customerrors.MISSING_PARAMETER.Message,
			Description: "key is required.",
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

	traitService := provider.NewTraitsProvider().GetTraitIndexService()
	page, err := traitService.ListValues(r.Context(), siteID, key, limit, offset)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.WriteJSONResponse(w, page)
}
