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

// Package timerange normalizes caller-supplied date ranges and time buckets
// into event store predicates and bucketing expressions.
package timerange

import (
	"fmt"
	"net/http"
	"time"

	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
)

const dateLayout = "2006-01-02"

// Bucket is a fixed time granularity for aggregated counts.
type Bucket string

const (
	BucketMinute Bucket = "minute"
	BucketHour   Bucket = "hour"
	BucketDay    Bucket = "day"
	BucketWeek   Bucket = "week"
	BucketMonth  Bucket = "month"
)

// bucketFns maps a bucket to its event store truncation function.
var bucketFns = map[Bucket]string{
	BucketMinute: "toStartOfMinute",
	BucketHour:   "toStartOfHour",
	BucketDay:    "toStartOfDay",
	BucketWeek:   "toStartOfWeek",
	BucketMonth:  "toStartOfMonth",
}

// Range is a resolved time predicate. Start is inclusive and End is
// exclusive; both are concrete instants computed from the caller's dates
// in the caller's timezone, so they always travel as bound arguments.
type Range struct {
	Start    time.Time
	End      time.Time
	HasStart bool
	HasEnd   bool
	Timezone string
	Bucket   Bucket
}

// Resolve validates and normalizes range parameters. Dates are YYYY-MM-DD
// interpreted in the given IANA timezone: the range runs from local
// midnight of startDate up to, but excluding, local midnight after
// endDate. An empty bucket means no bucketing is requested.
func Resolve(startDate, endDate, timezone, bucket string) (*Range, error) {

	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_TIMEZONE.Code,
			Message:     errors2.INVALID_TIMEZONE.Message,
			Description: fmt.Sprintf("Unknown timezone: %s", timezone),
		}, http.StatusBadRequest)
	}

	r := &Range{Timezone: timezone}

	if bucket != "" {
		if _, ok := bucketFns[Bucket(bucket)]; !ok {
			return nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:        errors2.INVALID_BUCKET.Code,
				Message:     errors2.INVALID_BUCKET.Message,
				Description: fmt.Sprintf("Invalid bucket value: %s", bucket),
			}, http.StatusBadRequest)
		}
		r.Bucket = Bucket(bucket)
	}

	if startDate != "" {
		t, err := time.ParseInLocation(dateLayout, startDate, loc)
		if err != nil {
			return nil, invalidDate("start_date", startDate)
		}
		r.Start = t
		r.HasStart = true
	}
	if endDate != "" {
		t, err := time.ParseInLocation(dateLayout, endDate, loc)
		if err != nil {
			return nil, invalidDate("end_date", endDate)
		}
		// End of the range is midnight after end_date: inclusive dates,
		// exclusive instant.
		r.End = t.AddDate(0, 0, 1)
		r.HasEnd = true
	}
	if r.HasStart && r.HasEnd && !r.Start.Before(r.End) {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_TIME_RANGE.Code,
			Message:     errors2.INVALID_TIME_RANGE.Message,
			Description: "start_date must not be after end_date.",
		}, http.StatusBadRequest)
	}

	return r, nil
}

// Clause returns the time predicate fragment and its bound arguments. The
// fragment is empty when the range has no bounds (realtime mode handles
// its own since clause). A nil receiver means an unbounded range.
func (r *Range) Clause() (string, []interface{}) {

	if r == nil {
		return "", nil
	}

	clause := ""
	var args []interface{}
	if r.HasStart {
		clause += " AND timestamp >= ?"
		args = append(args, r.Start)
	}
	if r.HasEnd {
		clause += " AND timestamp < ?"
		args = append(args, r.End)
	}
	return clause, args
}

// BucketExpr returns the grouping expression for the resolved bucket,
// truncating in the caller's timezone. The timezone travels as a bound
// argument.
func (r *Range) BucketExpr() (string, []interface{}) {

	fn := bucketFns[r.Bucket]
	return fmt.Sprintf("toDateTime(%s(toTimeZone(timestamp, ?)))", fn), []interface{}{r.Timezone}
}

// SinceClause is the realtime mode predicate: a strict lower bound with no
// upper bound and no bucketing.
func SinceClause(since time.Time) (string, []interface{}) {

	return " AND timestamp > ?", []interface{}{since}
}

func invalidDate(param, value string) error {
	return errors2.NewClientError(errors2.ErrorMessage{
		Code:        errors2.INVALID_TIME_RANGE.Code,
		Message:     errors2.INVALID_TIME_RANGE.Message,
		Description: fmt.Sprintf("%s must be YYYY-MM-DD, got: %s", param, value),
	}, http.StatusBadRequest)
}
