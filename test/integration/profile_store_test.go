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

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbprovider "github.com/wso2/web-analytics-service/internal/system/database/provider"
	"github.com/wso2/web-analytics-service/internal/users/store"
)

func TestSearchProfileIDs_AgainstPostgres(t *testing.T) {
	truncateProfiles(t)
	seedProfile(t, 1, "u1", `{"username": "alice", "email": "alice@example.com"}`)
	seedProfile(t, 1, "u2", `{"username": "alicia"}`)
	seedProfile(t, 1, "u3", `{"username": "bob"}`)
	seedProfile(t, 2, "u4", `{"username": "alice"}`) // other site

	profileStore := store.NewProfileStore(dbprovider.GetDBClient())

	ids, err := profileStore.SearchProfileIDs(context.Background(), 1, "username", "ali", 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids, "substring match, site scoped")

	ids, err = profileStore.SearchProfileIDs(context.Background(), 1, "username", "ALICE", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids, "match is case-insensitive")

	ids, err = profileStore.SearchProfileIDs(context.Background(), 1, "email", "example.com", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)

	ids, err = profileStore.SearchProfileIDs(context.Background(), 1, "user_id", "u", 1)
	require.NoError(t, err)
	assert.Len(t, ids, 1, "limit caps the candidate set")
}

func TestSearchProfileIDs_WildcardsMatchedLiterally(t *testing.T) {
	truncateProfiles(t)
	seedProfile(t, 1, "u1", `{"username": "100%_club"}`)
	seedProfile(t, 1, "u2", `{"username": "100 club"}`)

	profileStore := store.NewProfileStore(dbprovider.GetDBClient())

	ids, err := profileStore.SearchProfileIDs(context.Background(), 1, "username", "100%_", 100)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids, "% and _ in the term are literals, not wildcards")
}

func TestGetTraitsByUserIDs_AgainstPostgres(t *testing.T) {
	truncateProfiles(t)
	seedProfile(t, 1, "u1", `{"plan": "pro"}`)
	seedProfile(t, 1, "u2", `{"plan": "free"}`)

	profileStore := store.NewProfileStore(dbprovider.GetDBClient())

	traits, err := profileStore.GetTraitsByUserIDs(context.Background(), 1, []string{"u1", "u2", "missing"})
	require.NoError(t, err)

	require.Len(t, traits, 2)
	assert.JSONEq(t, `{"plan": "pro"}`, string(traits["u1"]))
	assert.JSONEq(t, `{"plan": "free"}`, string(traits["u2"]))
	_, found := traits["missing"]
	assert.False(t, found, "ids without a profile are absent, not present with null")
}

func TestProfilesByTraitValue_AgainstPostgres(t *testing.T) {
	truncateProfiles(t)
	seedProfile(t, 1, "u3", `{"plan": "pro"}`)
	seedProfile(t, 1, "u1", `{"plan": "pro"}`)
	seedProfile(t, 1, "u2", `{"plan": "free"}`)
	seedProfile(t, 2, "u9", `{"plan": "pro"}`)

	profileStore := store.NewProfileStore(dbprovider.GetDBClient())

	profiles, err := profileStore.ProfilesByTraitValue(context.Background(), 1, "plan", "pro", 10, 0)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "u1", profiles[0].UserID, "ordered by user id for stable pagination")
	assert.Equal(t, "u3", profiles[1].UserID)

	total, err := profileStore.CountProfilesByTraitValue(context.Background(), 1, "plan", "pro")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	// Second page is empty.
	profiles, err = profileStore.ProfilesByTraitValue(context.Background(), 1, "plan", "pro", 10, 10)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
