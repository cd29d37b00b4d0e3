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
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
	"github.com/wso2/web-analytics-service/internal/system/eventstore/client"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/log"
	"github.com/wso2/web-analytics-service/internal/users/model"
)

// effectiveUserExpr derives the grouping key for all per-user views: the
// identified id when present, the anonymous device id otherwise.
const effectiveUserExpr = "COALESCE(NULLIF(identified_user_id, ''), user_id)"

// rollupColumns reduces each group with last-write-wins by timestamp,
// except referrer and hostname which keep the first-touch value.
const rollupColumns = `
		argMax(user_id, timestamp) AS user_id,
		argMax(identified_user_id, timestamp) AS identified_user_id,
		argMax(country, timestamp) AS country,
		argMax(region, timestamp) AS region,
		argMax(city, timestamp) AS city,
		argMax(language, timestamp) AS language,
		argMax(browser, timestamp) AS browser,
		argMax(browser_version, timestamp) AS browser_version,
		argMax(operating_system, timestamp) AS operating_system,
		argMax(operating_system_version, timestamp) AS operating_system_version,
		argMax(device_type, timestamp) AS device_type,
		argMin(referrer, timestamp) AS referrer,
		argMax(channel, timestamp) AS channel,
		argMin(hostname, timestamp) AS hostname,
		countIf(type = 'pageview') AS pageviews,
		countIf(type = 'custom_event') AS events,
		count(DISTINCT session_id) AS sessions,
		max(timestamp) AS last_seen,
		min(timestamp) AS first_seen`

// UserAggStoreInterface is the event store aggregation surface consumed by
// the user aggregation service. SortBy and sortOrder must already be
// whitelisted by the caller; this store never sees raw request fields.
type UserAggStoreInterface interface {
	SelectUserRollups(ctx context.Context, pred *filter.RollupPredicate, rng *timerange.Range, matchingIDs []string, identifiedOnly bool, sortBy, sortOrder string, limit, offset int) ([]model.UserRollup, error)
	CountUsers(ctx context.Context, pred *filter.RollupPredicate, rng *timerange.Range, matchingIDs []string, identifiedOnly bool) (uint64, error)
	SelectTraitUserRollups(ctx context.Context, siteID int64, userIDs []string) ([]model.TraitUserRollup, error)
}

// UserAggStore computes per-effective-user rollups in the event store.
type UserAggStore struct {
	client client.EventStoreClientInterface
}

// NewUserAggStore creates a user aggregation store over the given client.
func NewUserAggStore(c client.EventStoreClientInterface) *UserAggStore {

	return &UserAggStore{client: c}
}

// SelectUserRollups aggregates events per effective user and returns one
// sorted, paginated page. Tenant isolation, the time range and event-level
// filters constrain the raw scan; rollup-dimension filters and
// identifiedOnly apply over the grouped output, so a country filter
// matches the user's reduced country with full lifetime counts.
func (s *UserAggStore) SelectUserRollups(ctx context.Context, pred *filter.RollupPredicate, rng *timerange.Range, matchingIDs []string, identifiedOnly bool, sortBy, sortOrder string, limit, offset int) ([]model.UserRollup, error) {

	timeClause, timeArgs := rng.Clause()
	matchClause, matchArgs := matchingIDsClause(matchingIDs)

	identifiedClause := ""
	if identifiedOnly {
		identifiedClause = " AND identified_user_id != ''"
	}

	query := fmt.Sprintf(`
		WITH aggregated_users AS (
			SELECT
				%s AS effective_user_id,%s
			FROM events
			WHERE %s%s%s%s
			GROUP BY effective_user_id
		)
		SELECT
			effective_user_id, user_id, identified_user_id, country, region,
			city, language, browser, browser_version, operating_system,
			operating_system_version, device_type, referrer, channel,
			hostname, pageviews, events, sessions, last_seen, first_seen
		FROM aggregated_users
		WHERE 1 = 1%s%s
		ORDER BY %s %s
		LIMIT %d OFFSET %d`,
		effectiveUserExpr, rollupColumns,
		pred.TenantClause, timeClause, matchClause, pred.FilterClause,
		pred.RollupClause, identifiedClause,
		sortBy, sortOrder, limit, offset)

	args := append(pred.TenantArgs, timeArgs...)
	args = append(args, matchArgs...)
	args = append(args, pred.FilterArgs...)
	args = append(args, pred.RollupArgs...)

	var rollups []model.UserRollup
	if err := s.client.Select(ctx, &rollups, query, args...); err != nil {
		return nil, s.queryError(query, err)
	}
	return rollups, nil
}

// CountUsers counts distinct effective users under the same predicate,
// without pagination. The count runs as a flat scan, so every filter
// applies per event here; rollup dimensions exist on raw events too.
func (s *UserAggStore) CountUsers(ctx context.Context, pred *filter.RollupPredicate, rng *timerange.Range, matchingIDs []string, identifiedOnly bool) (uint64, error) {

	timeClause, timeArgs := rng.Clause()
	matchClause, matchArgs := matchingIDsClause(matchingIDs)
	filterClause := pred.FilterClause + pred.RollupClause

	var query string
	if identifiedOnly {
		query = fmt.Sprintf(`
			SELECT count(*) AS total_count
			FROM (
				SELECT DISTINCT identified_user_id
				FROM events
				WHERE %s
				  AND identified_user_id != ''%s%s%s
			)`,
			pred.TenantClause, timeClause, filterClause, matchClause)
	} else {
		query = fmt.Sprintf(`
			SELECT count(DISTINCT %s) AS total_count
			FROM events
			WHERE %s%s%s%s`,
			effectiveUserExpr, pred.TenantClause, timeClause, filterClause, matchClause)
	}

	args := append(pred.TenantArgs, timeArgs...)
	args = append(args, pred.FilterArgs...)
	args = append(args, pred.RollupArgs...)
	args = append(args, matchArgs...)

	var total uint64
	if err := s.client.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, s.queryError(query, err)
	}
	return total, nil
}

// SelectTraitUserRollups returns session/dimension aggregates for a fixed
// candidate set of identified user ids.
func (s *UserAggStore) SelectTraitUserRollups(ctx context.Context, siteID int64, userIDs []string) ([]model.TraitUserRollup, error) {

	query := fmt.Sprintf(`
		SELECT
			%s AS effective_user_id,
			argMax(user_id, timestamp) AS user_id,
			argMax(identified_user_id, timestamp) AS identified_user_id,
			argMax(country, timestamp) AS country,
			argMax(region, timestamp) AS region,
			argMax(city, timestamp) AS city,
			argMax(browser, timestamp) AS browser,
			argMax(operating_system, timestamp) AS operating_system,
			argMax(device_type, timestamp) AS device_type,
			count(DISTINCT session_id) AS sessions
		FROM events
		WHERE site_id = ?
		  AND identified_user_id IN (%s)
		GROUP BY effective_user_id`,
		effectiveUserExpr, placeholders(len(userIDs)))

	args := make([]interface{}, 0, len(userIDs)+1)
	args = append(args, siteID)
	for _, id := range userIDs {
		args = append(args, id)
	}

	var rollups []model.TraitUserRollup
	if err := s.client.Select(ctx, &rollups, query, args...); err != nil {
		return nil, s.queryError(query, err)
	}
	return rollups, nil
}

func (s *UserAggStore) queryError(query string, err error) error {

	log.GetLogger().Error("User aggregation query failed",
		log.Error(err), log.String("query", query))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:    errors2.AGGREGATE_USERS.Code,
		Message: errors2.AGGREGATE_USERS.Message,
	}, pkgerrors.Wrap(err, "user aggregation query"))
}

// matchingIDsClause restricts the raw event scan to a candidate set of
// identified user ids produced by a profile search.
func matchingIDsClause(ids []string) (string, []interface{}) {

	if len(ids) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(" AND identified_user_id IN (%s)", placeholders(len(ids))), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
