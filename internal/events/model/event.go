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

package model

import "time"

// Event is a single behavioral event row. Events are immutable and owned
// by the ingestion pipeline; this service only reads them.
type Event struct {
	Timestamp              time.Time `json:"timestamp" ch:"timestamp"`
	EventName              string    `json:"event_name" ch:"event_name"`
	Properties             string    `json:"properties" ch:"properties"`
	SessionID              string    `json:"session_id" ch:"session_id"`
	UserID                 string    `json:"user_id" ch:"user_id"`
	IdentifiedUserID       string    `json:"identified_user_id" ch:"identified_user_id"`
	Pathname               string    `json:"pathname" ch:"pathname"`
	Querystring            string    `json:"querystring" ch:"querystring"`
	Hostname               string    `json:"hostname" ch:"hostname"`
	PageTitle              string    `json:"page_title" ch:"page_title"`
	Referrer               string    `json:"referrer" ch:"referrer"`
	Browser                string    `json:"browser" ch:"browser"`
	BrowserVersion         string    `json:"browser_version" ch:"browser_version"`
	OperatingSystem        string    `json:"operating_system" ch:"operating_system"`
	OperatingSystemVersion string    `json:"operating_system_version" ch:"operating_system_version"`
	Language               string    `json:"language" ch:"language"`
	Country                string    `json:"country" ch:"country"`
	Region                 string    `json:"region" ch:"region"`
	City                   string    `json:"city" ch:"city"`
	Lat                    float64   `json:"lat" ch:"lat"`
	Lon                    float64   `json:"lon" ch:"lon"`
	ScreenWidth            int32     `json:"screen_width" ch:"screen_width"`
	ScreenHeight           int32     `json:"screen_height" ch:"screen_height"`
	DeviceType             string    `json:"device_type" ch:"device_type"`
	Type                   string    `json:"type" ch:"type"`
}

// Cursor describes where the next cursor-mode page starts. HasMore is a
// heuristic: it reports whether the page came back full, not whether older
// rows actually exist.
type Cursor struct {
	HasMore         bool       `json:"hasMore"`
	OldestTimestamp *time.Time `json:"oldestTimestamp"`
}

// EventPage is a cursor-mode page of events, newest first.
type EventPage struct {
	Data   []Event `json:"data"`
	Cursor Cursor  `json:"cursor"`
}

// BucketCount is one aggregation bucket with per-type breakdowns. Buckets
// with no matching events are omitted, not zero-filled.
type BucketCount struct {
	Time             time.Time `json:"time" ch:"time"`
	PageviewCount    uint64    `json:"pageview_count" ch:"pageview_count"`
	CustomEventCount uint64    `json:"custom_event_count" ch:"custom_event_count"`
	PerformanceCount uint64    `json:"performance_count" ch:"performance_count"`
	OutboundCount    uint64    `json:"outbound_count" ch:"outbound_count"`
	ErrorCount       uint64    `json:"error_count" ch:"error_count"`
	ButtonClickCount uint64    `json:"button_click_count" ch:"button_click_count"`
	CopyCount        uint64    `json:"copy_count" ch:"copy_count"`
	FormSubmitCount  uint64    `json:"form_submit_count" ch:"form_submit_count"`
	InputChangeCount uint64    `json:"input_change_count" ch:"input_change_count"`
	EventCount       uint64    `json:"event_count" ch:"event_count"`
}
