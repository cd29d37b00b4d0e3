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

package service

import (
	"context"
	"net/http"
	"time"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
	"github.com/wso2/web-analytics-service/internal/events/model"
	"github.com/wso2/web-analytics-service/internal/events/store"
	"github.com/wso2/web-analytics-service/internal/system/constants"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
)

// EventQueryServiceInterface serves the three read patterns over the event
// store: realtime polling, cursor pagination and bucketed aggregation. All
// operations are read-only and idempotent.
type EventQueryServiceInterface interface {
	PollSince(ctx context.Context, siteID int64, since time.Time, filters []filter.Filter) ([]model.Event, error)
	CursorPage(ctx context.Context, siteID int64, filters []filter.Filter, rng *timerange.Range, before *time.Time, pageSize int) (*model.EventPage, error)
	BucketedCount(ctx context.Context, siteID int64, filters []filter.Filter, rng *timerange.Range) ([]model.BucketCount, error)
}

// EventQueryService is the default implementation of the
// EventQueryServiceInterface.
type EventQueryService struct {
	store store.EventReadStoreInterface
}

// NewEventQueryService creates an event query service over the given store.
func NewEventQueryService(s store.EventReadStoreInterface) *EventQueryService {

	return &EventQueryService{store: s}
}

// PollSince returns events with timestamp strictly greater than since,
// newest first, capped at the poll limit. Callers advance since to the
// newest timestamp they received; there are no pagination semantics.
func (es *EventQueryService) PollSince(ctx context.Context, siteID int64, since time.Time, filters []filter.Filter) ([]model.Event, error) {

	pred, err := filter.Compile(siteID, filters)
	if err != nil {
		return nil, err
	}
	return es.store.SelectSince(ctx, pred, since, constants.PollLimit)
}

// CursorPage returns up to pageSize events strictly older than before (the
// newest events when before is nil), newest first. HasMore reports whether
// the page came back full; a final page of exactly pageSize rows still
// reports true. Client infinite-scroll logic depends on this behavior.
func (es *EventQueryService) CursorPage(ctx context.Context, siteID int64, filters []filter.Filter, rng *timerange.Range, before *time.Time, pageSize int) (*model.EventPage, error) {

	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}

	pred, err := filter.Compile(siteID, filters)
	if err != nil {
		return nil, err
	}

	events, err := es.store.SelectPage(ctx, pred, rng, before, pageSize)
	if err != nil {
		return nil, err
	}

	page := &model.EventPage{
		Data:   events,
		Cursor: model.Cursor{HasMore: len(events) == pageSize},
	}
	if len(events) > 0 {
		oldest := events[len(events)-1].Timestamp
		page.Cursor.OldestTimestamp = &oldest
	}
	return page, nil
}

// BucketedCount returns per-bucket event counts broken out by type, bucket
// ascending. Buckets with zero matching events are omitted.
func (es *EventQueryService) BucketedCount(ctx context.Context, siteID int64, filters []filter.Filter, rng *timerange.Range) ([]model.BucketCount, error) {

	if rng == nil || rng.Bucket == "" {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_BUCKET.Code,
			Message:     errors2.INVALID_BUCKET.Message,
			Description: "A bucket value is required for bucketed counts.",
		}, http.StatusBadRequest)
	}

	pred, err := filter.Compile(siteID, filters)
	if err != nil {
		return nil, err
	}
	return es.store.SelectBucketedCounts(ctx, pred, rng)
}
