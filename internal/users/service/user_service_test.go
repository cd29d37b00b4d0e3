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
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
	"github.com/wso2/web-analytics-service/internal/system/log"
	"github.com/wso2/web-analytics-service/internal/users/model"
)

func TestMain(m *testing.M) {
	_ = log.Init("ERROR")
	os.Exit(m.Run())
}

type fakeUserAggStore struct {
	rollups      []model.UserRollup
	total        uint64
	traitRollups []model.TraitUserRollup
	err          error

	selectCalls        int
	countCalls         int
	lastMatchingIDs    []string
	lastIdentifiedOnly bool
	lastSortBy         string
	lastSortOrder      string
	lastLimit          int
	lastOffset         int
	lastTraitIDs       []string
}

func (f *fakeUserAggStore) SelectUserRollups(_ context.Context, _ *filter.RollupPredicate, _ *timerange.Range, matchingIDs []string, identifiedOnly bool, sortBy, sortOrder string, limit, offset int) ([]model.UserRollup, error) {
	f.selectCalls++
	f.lastMatchingIDs = matchingIDs
	f.lastIdentifiedOnly = identifiedOnly
	f.lastSortBy = sortBy
	f.lastSortOrder = sortOrder
	f.lastLimit = limit
	f.lastOffset = offset
	return f.rollups, f.err
}

func (f *fakeUserAggStore) CountUsers(_ context.Context, _ *filter.RollupPredicate, _ *timerange.Range, _ []string, _ bool) (uint64, error) {
	f.countCalls++
	return f.total, f.err
}

func (f *fakeUserAggStore) SelectTraitUserRollups(_ context.Context, _ int64, userIDs []string) ([]model.TraitUserRollup, error) {
	f.lastTraitIDs = userIDs
	return f.traitRollups, f.err
}

type fakeProfileStore struct {
	searchIDs    []string
	traits       map[string]json.RawMessage
	profiles     []model.Profile
	profileTotal uint64
	searchErr    error
	traitsErr    error

	searchCalls     int
	lastSearchField string
	lastSearchTerm  string
	lastSearchLimit int
	lastTraitIDs    []string
}

func (f *fakeProfileStore) SearchProfileIDs(_ context.Context, _ int64, field, term string, limit int) ([]string, error) {
	f.searchCalls++
	f.lastSearchField = field
	f.lastSearchTerm = term
	f.lastSearchLimit = limit
	return f.searchIDs, f.searchErr
}

func (f *fakeProfileStore) GetTraitsByUserIDs(_ context.Context, _ int64, userIDs []string) (map[string]json.RawMessage, error) {
	f.lastTraitIDs = userIDs
	return f.traits, f.traitsErr
}

func (f *fakeProfileStore) ProfilesByTraitValue(_ context.Context, _ int64, _, _ string, _, _ int) ([]model.Profile, error) {
	return f.profiles, nil
}

func (f *fakeProfileStore) CountProfilesByTraitValue(_ context.Context, _ int64, _, _ string) (uint64, error) {
	return f.profileTotal, nil
}

func emptyRange(t *testing.T) *timerange.Range {
	t.Helper()
	rng, err := timerange.Resolve("", "", "", "")
	require.NoError(t, err)
	return rng
}

func TestListUsers_EnrichesIdentifiedUsersWithTraits(t *testing.T) {
	agg := &fakeUserAggStore{
		rollups: []model.UserRollup{
			{EffectiveUserID: "u1", UserID: "d1", IdentifiedUserID: "u1", Sessions: 3},
			{EffectiveUserID: "d2", UserID: "d2", Sessions: 1},
		},
		total: 2,
	}
	profiles := &fakeProfileStore{
		traits: map[string]json.RawMessage{
			"u1": json.RawMessage(`{"plan":"pro"}`),
		},
	}
	svc := NewUserAggregationService(agg, profiles)

	list, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{Range: emptyRange(t)})
	require.NoError(t, err)

	require.Len(t, list.Data, 2)
	assert.JSONEq(t, `{"plan":"pro"}`, string(list.Data[0].Traits))
	assert.Nil(t, list.Data[1].Traits, "anonymous users carry no traits")
	assert.Equal(t, uint64(2), list.TotalCount)
	assert.Equal(t, []string{"u1"}, profiles.lastTraitIDs, "only identified ids hit the profile store")
}

func TestListUsers_SortWhitelistFallsBackSilently(t *testing.T) {
	agg := &fakeUserAggStore{}
	svc := NewUserAggregationService(agg, &fakeProfileStore{})

	_, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:     emptyRange(t),
		SortBy:    "traits; DROP TABLE events",
		SortOrder: "sideways",
	})
	require.NoError(t, err)

	assert.Equal(t, "last_seen", agg.lastSortBy)
	assert.Equal(t, "DESC", agg.lastSortOrder)
}

func TestListUsers_SortAscending(t *testing.T) {
	agg := &fakeUserAggStore{}
	svc := NewUserAggregationService(agg, &fakeProfileStore{})

	_, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:     emptyRange(t),
		SortBy:    "pageviews",
		SortOrder: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, "pageviews", agg.lastSortBy)
	assert.Equal(t, "ASC", agg.lastSortOrder)
}

func TestListUsers_Pagination(t *testing.T) {
	agg := &fakeUserAggStore{}
	svc := NewUserAggregationService(agg, &fakeProfileStore{})

	list, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:    emptyRange(t),
		Page:     3,
		PageSize: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, 20, agg.lastLimit)
	assert.Equal(t, 40, agg.lastOffset)
	assert.Equal(t, 3, list.Page)
	assert.Equal(t, 20, list.PageSize)
}

func TestListUsers_SearchForcesIdentifiedOnly(t *testing.T) {
	agg := &fakeUserAggStore{}
	profiles := &fakeProfileStore{searchIDs: []string{"u1", "u2"}}
	svc := NewUserAggregationService(agg, profiles)

	_, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:  emptyRange(t),
		Search: "alice",
	})
	require.NoError(t, err)

	assert.True(t, agg.lastIdentifiedOnly)
	assert.Equal(t, []string{"u1", "u2"}, agg.lastMatchingIDs)
	assert.Equal(t, "username", profiles.lastSearchField, "search field defaults to username")
	assert.Equal(t, 10000, profiles.lastSearchLimit)
}

func TestListUsers_SearchWithNoMatchesShortCircuits(t *testing.T) {
	agg := &fakeUserAggStore{}
	profiles := &fakeProfileStore{searchIDs: nil}
	svc := NewUserAggregationService(agg, profiles)

	list, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:  emptyRange(t),
		Search: "nobody",
	})
	require.NoError(t, err)

	assert.Empty(t, list.Data)
	assert.Zero(t, list.TotalCount)
	assert.Zero(t, agg.selectCalls, "no event store query when the search matches nothing")
	assert.Zero(t, agg.countCalls)
}

func TestListUsers_UnknownSearchFieldFallsBack(t *testing.T) {
	profiles := &fakeProfileStore{searchIDs: []string{"u1"}}
	svc := NewUserAggregationService(&fakeUserAggStore{}, profiles)

	_, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:       emptyRange(t),
		Search:      "alice",
		SearchField: "password",
	})
	require.NoError(t, err)

	assert.Equal(t, "username", profiles.lastSearchField)
}

func TestListUsers_TraitEnrichmentDegradesGracefully(t *testing.T) {
	agg := &fakeUserAggStore{
		rollups: []model.UserRollup{
			{EffectiveUserID: "u1", IdentifiedUserID: "u1", Sessions: 2},
		},
		total: 1,
	}
	profiles := &fakeProfileStore{traitsErr: errors.New("profile store down")}
	svc := NewUserAggregationService(agg, profiles)

	list, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{Range: emptyRange(t)})
	require.NoError(t, err, "a trait lookup failure must not fail the listing")

	require.Len(t, list.Data, 1)
	assert.Nil(t, list.Data[0].Traits)
	assert.Equal(t, uint64(2), list.Data[0].Sessions)
}

func TestListUsers_InvalidFilterRejected(t *testing.T) {
	svc := NewUserAggregationService(&fakeUserAggStore{}, &fakeProfileStore{})

	_, err := svc.ListUsers(context.Background(), 1, &model.ListUsersRequest{
		Range:   emptyRange(t),
		Filters: []filter.Filter{{Dimension: "nope", Operator: "eq", Values: []string{"x"}}},
	})
	require.Error(t, err)
}

func TestUsersByTrait_LeftJoinPreservesEventlessProfiles(t *testing.T) {
	agg := &fakeUserAggStore{
		traitRollups: []model.TraitUserRollup{
			{EffectiveUserID: "u1", UserID: "d1", IdentifiedUserID: "u1", Country: "DE", Sessions: 4},
		},
	}
	profiles := &fakeProfileStore{
		profiles: []model.Profile{
			{UserID: "u1", Traits: json.RawMessage(`{"plan":"pro"}`)},
			{UserID: "u2", Traits: json.RawMessage(`{"plan":"free"}`)},
		},
		profileTotal: 2,
	}
	svc := NewUserAggregationService(agg, profiles)

	page, err := svc.UsersByTrait(context.Background(), 1, "plan", "any", 50, 0)
	require.NoError(t, err)

	require.Len(t, page.Users, 2)
	assert.Equal(t, "d1", page.Users[0].UserID)
	assert.Equal(t, uint64(4), page.Users[0].Sessions)
	assert.Equal(t, "DE", page.Users[0].Country)

	// u2 has a profile but no events: present with zero aggregates.
	assert.Equal(t, "u2", page.Users[1].UserID)
	assert.Zero(t, page.Users[1].Sessions)
	assert.Empty(t, page.Users[1].Country)
	assert.JSONEq(t, `{"plan":"free"}`, string(page.Users[1].Traits))

	assert.Equal(t, []string{"u1", "u2"}, agg.lastTraitIDs)
}

func TestUsersByTrait_ExactHasMore(t *testing.T) {
	profiles := &fakeProfileStore{
		profiles:     []model.Profile{{UserID: "u1"}},
		profileTotal: 11,
	}
	svc := NewUserAggregationService(&fakeUserAggStore{}, profiles)

	page, err := svc.UsersByTrait(context.Background(), 1, "plan", "pro", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	assert.True(t, page.HasMore)

	page, err = svc.UsersByTrait(context.Background(), 1, "plan", "pro", 10, 10)
	require.NoError(t, err)
	assert.False(t, page.HasMore, "offset 10 + limit 10 covers all 11 rows")
}

func TestUsersByTrait_NoProfilesSkipsEventStore(t *testing.T) {
	agg := &fakeUserAggStore{}
	svc := NewUserAggregationService(agg, &fakeProfileStore{})

	page, err := svc.UsersByTrait(context.Background(), 1, "plan", "enterprise", 50, 0)
	require.NoError(t, err)

	assert.Empty(t, page.Users)
	assert.Zero(t, page.Total)
	assert.Nil(t, agg.lastTraitIDs)
}
