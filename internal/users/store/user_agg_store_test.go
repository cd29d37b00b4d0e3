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

package store

import (
	"context"
	"strings"
	"testing"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
)

// fakeEventStoreClient captures the last query without executing it.
type fakeEventStoreClient struct {
	lastQuery string
	lastArgs  []interface{}
}

func (f *fakeEventStoreClient) Select(_ context.Context, _ interface{}, query string, args ...interface{}) error {
	f.lastQuery = query
	f.lastArgs = args
	return nil
}

func (f *fakeEventStoreClient) QueryRow(_ context.Context, query string, args ...interface{}) driver.Row {
	f.lastQuery = query
	f.lastArgs = args
	return fakeRow{}
}

func (f *fakeEventStoreClient) Ping(_ context.Context) error { return nil }
func (f *fakeEventStoreClient) Close() error                 { return nil }

type fakeRow struct{}

func (fakeRow) Err() error                     { return nil }
func (fakeRow) Scan(_ ...interface{}) error    { return nil }
func (fakeRow) ScanStruct(_ interface{}) error { return nil }

func compiled(t *testing.T, siteID int64, filters []filter.Filter) *filter.RollupPredicate {
	t.Helper()
	pred, err := filter.CompileRollup(siteID, filters)
	require.NoError(t, err)
	return pred
}

func TestSelectUserRollups_QueryShape(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	rng, err := timerange.Resolve("2026-03-01", "2026-03-03", "UTC", "")
	require.NoError(t, err)
	pred := compiled(t, 9, []filter.Filter{
		{Dimension: "country", Operator: "eq", Values: []string{"DE"}},
	})

	_, err = store.SelectUserRollups(context.Background(), pred, rng, nil, false, "last_seen", "DESC", 50, 100)
	require.NoError(t, err)

	q := client.lastQuery
	assert.Contains(t, q, "COALESCE(NULLIF(identified_user_id, ''), user_id) AS effective_user_id")
	assert.Contains(t, q, "GROUP BY effective_user_id")
	assert.Contains(t, q, "argMin(referrer, timestamp)", "referrer keeps the first-touch value")
	assert.Contains(t, q, "argMin(hostname, timestamp)")
	assert.Contains(t, q, "ORDER BY last_seen DESC")
	assert.Contains(t, q, "LIMIT 50 OFFSET 100")

	// Tenant isolation and time bounds constrain the raw scan; the
	// country filter compares the reduced per-user value, so it must sit
	// after the grouping.
	grouping := strings.Index(q, "GROUP BY effective_user_id")
	aggregation := q[:grouping]
	assert.Contains(t, aggregation, "site_id = ?")
	assert.NotContains(t, aggregation, "country = ?")
	assert.Greater(t, strings.Index(q, "country = ?"), grouping)

	// Args follow clause order: site id, time bounds, then rollup filter
	// values.
	require.Len(t, client.lastArgs, 4)
	assert.Equal(t, int64(9), client.lastArgs[0])
	assert.Equal(t, "DE", client.lastArgs[3])
}

func TestSelectUserRollups_EventFiltersStayOnRawScan(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	pred := compiled(t, 9, []filter.Filter{
		{Dimension: "pathname", Operator: "eq", Values: []string{"/pricing"}},
		{Dimension: "country", Operator: "eq", Values: []string{"DE"}},
	})

	_, err := store.SelectUserRollups(context.Background(), pred, nil, nil, false, "last_seen", "DESC", 10, 0)
	require.NoError(t, err)

	q := client.lastQuery
	grouping := strings.Index(q, "GROUP BY effective_user_id")
	assert.Less(t, strings.Index(q, "pathname = ?"), grouping,
		"pathname only exists per event")
	assert.Greater(t, strings.Index(q, "country = ?"), grouping)
	assert.Equal(t, []interface{}{int64(9), "/pricing", "DE"}, client.lastArgs)
}

func TestSelectUserRollups_NilRangeUnbounded(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	_, err := store.SelectUserRollups(context.Background(), compiled(t, 1, nil), nil, nil, false, "last_seen", "DESC", 10, 0)
	require.NoError(t, err)
	assert.NotContains(t, client.lastQuery, "timestamp >=")
	assert.NotContains(t, client.lastQuery, "timestamp <")

	_, err = store.CountUsers(context.Background(), compiled(t, 1, nil), nil, nil, false)
	require.NoError(t, err)
	assert.NotContains(t, client.lastQuery, "timestamp >=")
}

func TestSelectUserRollups_IdentifiedOnly(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	rng, err := timerange.Resolve("", "", "", "")
	require.NoError(t, err)

	_, err = store.SelectUserRollups(context.Background(), compiled(t, 1, nil), rng, nil, true, "last_seen", "DESC", 10, 0)
	require.NoError(t, err)
	assert.Contains(t, client.lastQuery, "identified_user_id != ''")

	_, err = store.SelectUserRollups(context.Background(), compiled(t, 1, nil), rng, nil, false, "last_seen", "DESC", 10, 0)
	require.NoError(t, err)
	assert.NotContains(t, client.lastQuery, "identified_user_id != ''")
}

func TestSelectUserRollups_MatchingIDsAreBound(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	rng, err := timerange.Resolve("", "", "", "")
	require.NoError(t, err)

	_, err = store.SelectUserRollups(context.Background(), compiled(t, 1, nil), rng, []string{"u1", "u2"}, true, "last_seen", "DESC", 10, 0)
	require.NoError(t, err)

	assert.Contains(t, client.lastQuery, "identified_user_id IN (?, ?)")
	assert.NotContains(t, client.lastQuery, "u1", "ids travel as bound arguments")
	assert.Equal(t, []interface{}{int64(1), "u1", "u2"}, client.lastArgs)
}

func TestCountUsers_IdentifiedVariant(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	rng, err := timerange.Resolve("", "", "", "")
	require.NoError(t, err)

	_, err = store.CountUsers(context.Background(), compiled(t, 1, nil), rng, nil, true)
	require.NoError(t, err)
	assert.Contains(t, client.lastQuery, "SELECT DISTINCT identified_user_id")

	_, err = store.CountUsers(context.Background(), compiled(t, 1, nil), rng, nil, false)
	require.NoError(t, err)
	assert.Contains(t, client.lastQuery, "count(DISTINCT COALESCE(NULLIF(identified_user_id, ''), user_id))")
}

func TestCountUsers_FiltersApplyToFlatScan(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	pred := compiled(t, 2, []filter.Filter{
		{Dimension: "pathname", Operator: "eq", Values: []string{"/docs"}},
		{Dimension: "country", Operator: "eq", Values: []string{"DE"}},
	})

	// The count has no grouping pass; every filter hits the raw scan.
	_, err := store.CountUsers(context.Background(), pred, nil, nil, false)
	require.NoError(t, err)
	assert.NotContains(t, client.lastQuery, "GROUP BY")
	assert.Contains(t, client.lastQuery, "pathname = ?")
	assert.Contains(t, client.lastQuery, "country = ?")
	assert.Equal(t, []interface{}{int64(2), "/docs", "DE"}, client.lastArgs)
}

func TestSelectTraitUserRollups_BindsIDs(t *testing.T) {
	client := &fakeEventStoreClient{}
	store := NewUserAggStore(client)

	_, err := store.SelectTraitUserRollups(context.Background(), 3, []string{"u1", "u2", "u3"})
	require.NoError(t, err)

	assert.Contains(t, client.lastQuery, "identified_user_id IN (?, ?, ?)")
	assert.Equal(t, []interface{}{int64(3), "u1", "u2", "u3"}, client.lastArgs)
}
