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

package model

import (
	"encoding/json"
	"time"

	"github.com/wso2/web-analytics-service/internal/analytics/filter"
	"github.com/wso2/web-analytics-service/internal/analytics/timerange"
)

// UserRollup is one per-effective-user aggregate computed from the event
// store. Dimension values are last-write-wins by event timestamp except
// referrer and hostname, which keep the first-touch value. Rollups are
// computed per request and never persisted.
type UserRollup struct {
	EffectiveUserID        string    `json:"-" ch:"effective_user_id"`
	UserID                 string    `json:"user_id" ch:"user_id"`
	IdentifiedUserID       string    `json:"identified_user_id" ch:"identified_user_id"`
	Country                string    `json:"country" ch:"country"`
	Region                 string    `json:"region" ch:"region"`
	City                   string    `json:"city" ch:"city"`
	Language               string    `json:"language" ch:"language"`
	Browser                string    `json:"browser" ch:"browser"`
	BrowserVersion         string    `json:"browser_version" ch:"browser_version"`
	OperatingSystem        string    `json:"operating_system" ch:"operating_system"`
	OperatingSystemVersion string    `json:"operating_system_version" ch:"operating_system_version"`
	DeviceType             string    `json:"device_type" ch:"device_type"`
	Referrer               string    `json:"referrer" ch:"referrer"`
	Channel                string    `json:"channel" ch:"channel"`
	Hostname               string    `json:"hostname" ch:"hostname"`
	Pageviews              uint64    `json:"pageviews" ch:"pageviews"`
	Events                 uint64    `json:"events" ch:"events"`
	Sessions               uint64    `json:"sessions" ch:"sessions"`
	LastSeen               time.Time `json:"last_seen" ch:"last_seen"`
	FirstSeen              time.Time `json:"first_seen" ch:"first_seen"`
}

// UserListRow is a rollup enriched with the profile store trait blob.
// Traits is null when the effective user has no stored profile.
type UserListRow struct {
	UserRollup
	Traits json.RawMessage `json:"traits"`
}

// UserList is the offset-paginated user listing response.
type UserList struct {
	Data       []UserListRow `json:"data"`
	TotalCount uint64        `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

// ListUsersRequest carries the user listing parameters after transport
// parsing.
type ListUsersRequest struct {
	Filters        []filter.Filter
	Range          *timerange.Range
	Page           int
	PageSize       int
	SortBy         string
	SortOrder      string
	IdentifiedOnly bool
	Search         string
	SearchField    string
}

// Profile is a relational store row: an identified user id and its trait
// key/value map. Last write wins per key; no history is kept.
type Profile struct {
	UserID string
	Traits json.RawMessage
}

// TraitUserRollup is the reduced per-user aggregate used by the reverse
// trait lookup.
type TraitUserRollup struct {
	EffectiveUserID  string `ch:"effective_user_id"`
	UserID           string `ch:"user_id"`
	IdentifiedUserID string `ch:"identified_user_id"`
	Country          string `ch:"country"`
	Region           string `ch:"region"`
	City             string `ch:"city"`
	Browser          string `ch:"browser"`
	OperatingSystem  string `ch:"operating_system"`
	DeviceType       string `ch:"device_type"`
	Sessions         uint64 `ch:"sessions"`
}

// TraitUser is one row of the reverse trait lookup. Profile existence, not
// event existence, defines membership: a profile with no events appears
// with zero sessions and empty dimensions.
type TraitUser struct {
	UserID           string          `json:"user_id"`
	IdentifiedUserID string          `json:"identified_user_id"`
	Traits           json.RawMessage `json:"traits"`
	Country          string          `json:"country"`
	Region           string          `json:"region"`
	City             string          `json:"city"`
	Browser          string          `json:"browser"`
	OperatingSystem  string          `json:"operating_system"`
	DeviceType       string          `json:"device_type"`
	Sessions         uint64          `json:"sessions"`
}

// TraitUserPage is the reverse trait lookup response. HasMore is exact:
// offset+limit compared against the true total.
type TraitUserPage struct {
	Users   []TraitUser `json:"users"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
}
