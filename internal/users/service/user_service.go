/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/system/constants"
	"github.com/wso2/web-analytics-service/internal/system/log"
	"github.com/wso2/web-analytics-service/internal/users/model"
	"github.com/wso2/web-analytics-service/internal/users/store"
)

// UserAggregationServiceInterface joins per-user event rollups with the
// relational profile store.
type UserAggregationServiceInterface interface {
	ListUsers(ctx context.Context, siteID int64, req *model.ListUsersRequest) (*model.UserList, error)
	UsersByTrait(ctx context.Context, siteID int64, key, value string, limit, offset int) (*model.TraitUserPage, error)
}

// UserAggregationService is the default implementation of
// UserAggregationServiceInterface.
type UserAggregationService struct {
	aggStore     store.UserAggStoreInterface
	profileStore store.ProfileStoreInterface
}

// NewUserAggregationService creates a user aggregation service over the
// given stores.
func NewUserAggregationService(agg store.UserAggStoreInterface, profiles store.ProfileStoreInterface) *UserAggregationService {

	return &UserAggregationService{
		aggStore:     agg,
		profileStore: profiles,
	}
}

// ListUsers returns one page of per-user aggregates, enriched with stored
// profile traits. When a search term is given the profile store is
// consulted first and the event scan is restricted to the matching ids;
// search implies identified users only, since anonymous device ids carry
// no searchable profile.
func (s *UserAggregationService) ListUsers(ctx context.Context, siteID int64, req *model.ListUsersRequest) (*model.UserList, error) {

	pred, err := filter.CompileRollup(siteID, req.Filters)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	sortBy := req.SortBy
	if !constants.AllowedUserSortFields[sortBy] {
		sortBy = constants.DefaultSortField
	}
	sortOrder := "DESC"
	if req.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	identifiedOnly := req.IdentifiedOnly

	var matchingIDs []string
	if req.Search != "" {
		identifiedOnly = true
		field := req.SearchField
		if !constants.AllowedSearchFields[field] {
			field = constants.DefaultSearchField
		}
		matchingIDs, err = s.profileStore.SearchProfileIDs(ctx, siteID, field, req.Search, constants.MaxMatchingUserIDs)
		if err != nil {
			return nil, err
		}
		if len(matchingIDs) == 0 {
			return &model.UserList{
				Data:       []model.UserListRow{},
				TotalCount: 0,
				Page:       page,
				PageSize:   pageSize,
			}, nil
		}
	}

	offset := (page - 1) * pageSize

	var rollups []model.UserRollup
	var total uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rollups, err = s.aggStore.SelectUserRollups(gctx, pred, req.Range, matchingIDs, identifiedOnly, sortBy, sortOrder, pageSize, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.aggStore.CountUsers(gctx, pred, req.Range, matchingIDs, identifiedOnly)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := s.enrichWithTraits(ctx, siteID, rollups)

	return &model.UserList{
		Data:       rows,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// enrichWithTraits attaches the stored trait document to each identified
// rollup. A profile store failure degrades the page to null traits instead
// of failing the whole listing.
func (s *UserAggregationService) enrichWithTraits(ctx context.Context, siteID int64, rollups []model.UserRollup) []model.UserListRow {

	rows := make([]model.UserListRow, len(rollups))
	for i, r := range rollups {
		rows[i] = model.UserListRow{UserRollup: r}
	}

	identifiedIDs := make([]string, 0, len(rollups))
	for _, r := range rollups {
		if r.IdentifiedUserID != "" {
			identifiedIDs = append(identifiedIDs, r.IdentifiedUserID)
		}
	}
	if len(identifiedIDs) == 0 {
		return rows
	}

	traits, err := s.profileStore.GetTraitsByUserIDs(ctx, siteID, identifiedIDs)
	if err != nil {
		log.GetLogger().Warn("Trait enrichment failed, returning users without traits",
			log.Error(err), log.Int64("site_id", siteID))
		return rows
	}

	for i := range rows {
		if t, ok := traits[rows[i].IdentifiedUserID]; ok {
			rows[i].Traits = t
		}
	}
	return rows
}

// UsersByTrait returns one page of identified users whose stored traits
// hold the given value under the given key. Membership is defined by the
// profile store; event aggregates are attached where they exist, and a
// profile with no events still appears with zero sessions and empty
// dimensions.
func (s *UserAggregationService) UsersByTrait(ctx context.Context, siteID int64, key, value string, limit, offset int) (*model.TraitUserPage, error) {

	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var profiles []model.Profile
	var total uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.profileStore.ProfilesByTraitValue(gctx, siteID, key, value, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.profileStore.CountProfilesByTraitValue(gctx, siteID, key, value)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &model.TraitUserPage{
		Users:   []model.TraitUser{},
		Total:   int(total),
		HasMore: offset+limit < int(total),
	}
	if len(profiles) == 0 {
		return page, nil
	}

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.UserID
	}

	rollups, err := s.aggStore.SelectTraitUserRollups(ctx, siteID, ids)
	if err != nil {
		return nil, err
	}
	byIdentifiedID := make(map[string]model.TraitUserRollup, len(rollups))
	for _, r := range rollups {
		byIdentifiedID[r.IdentifiedUserID] = r
	}

	for _, p := range profiles {
		user := model.TraitUser{
			UserID:           p.UserID,
			IdentifiedUserID: p.UserID,
			Traits:           p.Traits,
		}
		if r, ok := byIdentifiedID[p.UserID]; ok {
			user.UserID = r.UserID
			user.Country = r.Country
			user.Region = r.Region
			user.City = r.City
			user.Browser = r.Browser
			user.OperatingSystem = r.OperatingSystem
			user.DeviceType = r.DeviceType
			user.Sessions = r.Sessions
		}
		page.Users = append(page.Users, user)
	}
	return page, nil
}
