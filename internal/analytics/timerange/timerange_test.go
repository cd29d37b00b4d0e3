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

package timerange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
)

func TestResolve_Defaults(t *testing.T) {
	rng, err := Resolve("", "", "", "")
	require.NoError(t, err)

	assert.Equal(t, "UTC", rng.Timezone)
	assert.False(t, rng.HasStart)
	assert.False(t, rng.HasEnd)
	assert.Empty(t, rng.Bucket)

	clause, args := rng.Clause()
	assert.Empty(t, clause)
	assert.Empty(t, args)
}

func TestResolve_InclusiveDatesExclusiveEnd(t *testing.T) {
	rng, err := Resolve("2026-03-01", "2026-03-03", "UTC", "")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), rng.Start)
	// End of the range is midnight after end_date.
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), rng.End)

	clause, args := rng.Clause()
	assert.Equal(t, " AND timestamp >= ? AND timestamp < ?", clause)
	assert.Equal(t, []interface{}{rng.Start, rng.End}, args)
}

func TestResolve_DatesInterpretedInCallerTimezone(t *testing.T) {
	rng, err := Resolve("2026-03-01", "", "America/New_York", "")
	require.NoError(t, err)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.True(t, rng.Start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, loc)))
}

func TestResolve_SingleDayRange(t *testing.T) {
	rng, err := Resolve("2026-03-01", "2026-03-01", "UTC", "")
	require.NoError(t, err)

	// A single inclusive day spans exactly 24 hours.
	assert.Equal(t, 24*time.Hour, rng.End.Sub(rng.Start))
}

func TestResolve_StartAfterEndRejected(t *testing.T) {
	_, err := Resolve("2026-03-05", "2026-03-01", "UTC", "")
	requireClientError(t, err, errors2.INVALID_TIME_RANGE.Code)
}

func TestResolve_UnknownTimezoneRejected(t *testing.T) {
	_, err := Resolve("", "", "Mars/Olympus_Mons", "")
	requireClientError(t, err, errors2.INVALID_TIMEZONE.Code)
}

func TestResolve_InvalidDateRejected(t *testing.T) {
	_, err := Resolve("03/01/2026", "", "UTC", "")
	requireClientError(t, err, errors2.INVALID_TIME_RANGE.Code)
}

func TestResolve_BucketValidation(t *testing.T) {
	for _, bucket := range []string{"minute", "hour", "day", "week", "month"} {
		rng, err := Resolve("", "", "", bucket)
		require.NoError(t, err, bucket)
		assert.Equal(t, Bucket(bucket), rng.Bucket)
	}

	_, err := Resolve("", "", "", "fortnight")
	requireClientError(t, err, errors2.INVALID_BUCKET.Code)
}

func TestBucketExpr(t *testing.T) {
	rng, err := Resolve("", "", "Europe/Berlin", "week")
	require.NoError(t, err)

	expr, args := rng.BucketExpr()
	assert.Equal(t, "toDateTime(toStartOfWeek(toTimeZone(timestamp, ?)))", expr)
	assert.Equal(t, []interface{}{"Europe/Berlin"}, args)
}

func TestClause_NilRangeIsUnbounded(t *testing.T) {
	var rng *Range

	clause, args := rng.Clause()
	assert.Empty(t, clause)
	assert.Nil(t, args)
}

func TestSinceClause(t *testing.T) {
	since := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	clause, args := SinceClause(since)

	assert.Equal(t, " AND timestamp > ?", clause)
	assert.Equal(t, []interface{}{since}, args)
}

func requireClientError(t *testing.T, err error, code string) {
	t.Helper()

	var clientErr *errors2.ClientError
	require.True(t, errors.As(err, &clientErr), "expected a client error, got %v", err)
	assert.Equal(t, code, clientErr.Code)
}
