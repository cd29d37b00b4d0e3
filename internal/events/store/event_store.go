/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
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
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
	"github.com/wso2/web-analytics-service/internal/events/model"
	"github.com/wso2/web-analytics-service/internal/system/constants"
	"github.com/wso2/web-analytics-service/internal/system/eventstore/client"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/log"
)

const eventColumns = `
	timestamp,
	event_name,
	toString(props) AS properties,
	session_id,
	user_id,
	identified_user_id,
	pathname,
	querystring,
	hostname,
	page_title,
	referrer,
	browser,
	browser_version,
	operating_system,
	operating_system_version,
	language,
	country,
	region,
	city,
	lat,
	lon,
	screen_width,
	screen_height,
	device_type,
	type`

// EventReadStoreInterface is the event store query surface consumed by the
// event query service. A nil range is treated as unbounded, except for
// SelectBucketedCounts which needs a resolved range carrying a bucket.
type EventReadStoreInterface interface {
	SelectSince(ctx context.Context, pred *filter.Predicate, since time.Time, limit int) ([]model.Event, error)
	SelectPage(ctx context.Context, pred *filter.Predicate, rng *timerange.Range, before *time.Time, limit int) ([]model.Event, error)
	SelectBucketedCounts(ctx context.Context, pred *filter.Predicate, rng *timerange.Range) ([]model.BucketCount, error)
}

// EventReadStore queries the columnar event store.
type EventReadStore struct {
	client client.EventStoreClientInterface
}

// NewEventReadStore creates an event read store over the given client.
func NewEventReadStore(c client.EventStoreClientInterface) *EventReadStore {

	return &EventReadStore{client: c}
}

// SelectSince returns events newer than the given instant, newest first,
// capped at limit. Used by realtime polling.
func (s *EventReadStore) SelectSince(ctx context.Context, pred *filter.Predicate, since time.Time, limit int) ([]model.Event, error) {

	sinceClause, sinceArgs := timerange.SinceClause(since)
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		  AND type IN (%s)%s%s
		ORDER BY timestamp DESC
		LIMIT %d`,
		eventColumns, pred.TenantClause, typeList(constants.ListedEventTypes), sinceClause, pred.FilterClause, limit)

	args := append(pred.TenantArgs, sinceArgs...)
	args = append(args, pred.FilterArgs...)

	var events []model.Event
	if err := s.client.Select(ctx, &events, query, args...); err != nil {
		return nil, s.queryError(errors2.GET_EVENTS, query, err)
	}
	return events, nil
}

// SelectPage returns up to limit events strictly older than before (or the
// newest events when before is nil), newest first.
func (s *EventReadStore) SelectPage(ctx context.Context, pred *filter.Predicate, rng *timerange.Range, before *time.Time, limit int) ([]model.Event, error) {

	timeClause, timeArgs := rng.Clause()

	cursorClause := ""
	var cursorArgs []interface{}
	if before != nil {
		cursorClause = " AND timestamp < ?"
		cursorArgs = append(cursorArgs, *before)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		WHERE %s
		  AND type IN (%s)%s%s%s
		ORDER BY timestamp DESC
		LIMIT %d`,
		eventColumns, pred.TenantClause, typeList(constants.ListedEventTypes), timeClause, cursorClause, pred.FilterClause, limit)

	args := append(pred.TenantArgs, timeArgs...)
	args = append(args, cursorArgs...)
	args = append(args, pred.FilterArgs...)

	var events []model.Event
	if err := s.client.Select(ctx, &events, query, args...); err != nil {
		return nil, s.queryError(errors2.GET_EVENTS, query, err)
	}
	return events, nil
}

// SelectBucketedCounts returns per-bucket counts broken out by event type,
// bucket ascending. Empty buckets are not returned.
func (s *EventReadStore) SelectBucketedCounts(ctx context.Context, pred *filter.Predicate, rng *timerange.Range) ([]model.BucketCount, error) {

	bucketExpr, bucketArgs := rng.BucketExpr()
	timeClause, timeArgs := rng.Clause()

	query := fmt.Sprintf(`
		SELECT
			%s AS time,
			countIf(type = 'pageview') AS pageview_count,
			countIf(type = 'custom_event') AS custom_event_count,
			countIf(type = 'performance') AS performance_count,
			countIf(type = 'outbound') AS outbound_count,
			countIf(type = 'error') AS error_count,
			countIf(type = 'button_click') AS button_click_count,
			countIf(type = 'copy') AS copy_count,
			countIf(type = 'form_submit') AS form_submit_count,
			countIf(type = 'input_change') AS input_change_count,
			count() AS event_count
		FROM events
		WHERE %s
		  AND type IN (%s)%s%s
		GROUP BY time
		ORDER BY time`,
		bucketExpr, pred.TenantClause, typeList(constants.AllEventTypes), timeClause, pred.FilterClause)

	args := append(bucketArgs, pred.TenantArgs...)
	args = append(args, timeArgs...)
	args = append(args, pred.FilterArgs...)

	var counts []model.BucketCount
	if err := s.client.Select(ctx, &counts, query, args...); err != nil {
		return nil, s.queryError(errors2.COUNT_EVENTS, query, err)
	}
	return counts, nil
}

// queryError logs the compiled query for diagnosis and returns a server
// error carrying the given code. The query text never reaches the caller.
func (s *EventReadStore) queryError(msg errors2.ErrorMessage, query string, err error) error {

	log.GetLogger().Error("Event store query failed",
		log.Error(err), log.String("query", query))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:    msg.Code,
		Message: msg.Message,
	}, pkgerrors.Wrap(err, "event store query"))
}

// typeList renders an internal event type list as a quoted IN list. The
// values are compile-time constants, never caller input.
func typeList(types []string) string {

	quoted := make([]string, len(types))
	for i, t := range types {
		quoted[i] = "'" + t + "'"
	}
	return strings.Join(quoted, ", ")
}
