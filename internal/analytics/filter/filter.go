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

// Package filter compiles caller-supplied filter lists into parameterized
// event store predicates. Call sites never concatenate filter values into
// query text; every value travels as a bound argument.
package filter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
)

// Filter is the wire form of a single filter condition.
type Filter struct {
	Dimension string   `json:"dimension"`
	Operator  string   `json:"operator"`
	Values    []string `json:"values"`
}

// Supported filter operators.
const (
	OperatorEquals      = "eq"
	OperatorNotEquals   = "neq"
	OperatorContains    = "contains"
	OperatorNotContains = "not_contains"
	OperatorIn          = "in"
)

// allowedDimensions maps a filterable dimension to its event store column.
// Anything outside this map is rejected, never passed through.
var allowedDimensions = map[string]string{
	"pathname":                 "pathname",
	"querystring":              "querystring",
	"hostname":                 "hostname",
	"page_title":               "page_title",
	"referrer":                 "referrer",
	"channel":                  "channel",
	"browser":                  "browser",
	"browser_version":          "browser_version",
	"operating_system":         "operating_system",
	"operating_system_version": "operating_system_version",
	"language":                 "language",
	"country":                  "country",
	"region":                   "region",
	"city":                     "city",
	"device_type":              "device_type",
	"type":                     "type",
	"event_name":               "event_name",
	"session_id":               "session_id",
	"user_id":                  "user_id",
	"identified_user_id":       "identified_user_id",
}

// rollupDimensions marks the filterable dimensions that survive the
// per-user rollup as reduced columns. The remaining dimensions only exist
// on individual events.
var rollupDimensions = map[string]bool{
	"hostname":                 true,
	"referrer":                 true,
	"channel":                  true,
	"browser":                  true,
	"browser_version":          true,
	"operating_system":         true,
	"operating_system_version": true,
	"language":                 true,
	"country":                  true,
	"region":                   true,
	"city":                     true,
	"device_type":              true,
	"user_id":                  true,
	"identified_user_id":       true,
}

// Predicate is a compiled, parameterized predicate. The tenant clause and
// the filter clause are kept separate so queries can interleave their own
// bound clauses (time range, cursor, candidate id set) between them while
// keeping clause text and argument order aligned.
type Predicate struct {
	TenantClause string
	TenantArgs   []interface{}
	FilterClause string
	FilterArgs   []interface{}
}

// RollupPredicate is a predicate compiled for queries that group events
// per user before filtering. The embedded Predicate carries the tenant
// clause and the event-level filters for the raw scan; RollupClause
// applies over the grouped output, so a country filter matches the user's
// reduced country value rather than any single event.
type RollupPredicate struct {
	Predicate
	RollupClause string
	RollupArgs   []interface{}
}

// WhereClause returns the combined predicate for flat event queries.
func (p *Predicate) WhereClause() string {
	return p.TenantClause + p.FilterClause
}

// Args returns the bound arguments matching WhereClause.
func (p *Predicate) Args() []interface{} {
	args := make([]interface{}, 0, len(p.TenantArgs)+len(p.FilterArgs))
	args = append(args, p.TenantArgs...)
	args = append(args, p.FilterArgs...)
	return args
}

// ParseFilters decodes the `filters` query parameter (a JSON array of
// filter objects). An empty parameter yields no filters.
func ParseFilters(raw string) ([]Filter, error) {

	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var filters []Filter
	if err := json.Unmarshal([]byte(raw), &filters); err != nil {
		return nil, errors2.NewClientError(errors2.ErrorMessage{
			Code:        errors2.INVALID_FILTER.Code,
			Message:     errors2.INVALID_FILTER.Message,
			Description: "Filters must be a JSON array of {dimension, operator, values} objects.",
		}, http.StatusBadRequest)
	}
	return filters, nil
}

// Compile translates a filter list into a parameterized predicate scoped to
// the given site. Tenant isolation is always compiled in and cannot be
// removed or overridden by the supplied filters.
func Compile(siteID int64, filters []Filter) (*Predicate, error) {

	clause, args, err := compileConditions(filters)
	if err != nil {
		return nil, err
	}
	return &Predicate{
		TenantClause: "site_id = ?",
		TenantArgs:   []interface{}{siteID},
		FilterClause: clause,
		FilterArgs:   args,
	}, nil
}

// CompileRollup translates a filter list for the per-user aggregation
// queries, routing each condition to the scan level where its column
// exists: rollup dimensions filter the grouped output, event-only
// dimensions constrain the raw scan.
func CompileRollup(siteID int64, filters []Filter) (*RollupPredicate, error) {

	var eventFilters, rollupFilters []Filter
	for _, f := range filters {
		if rollupDimensions[f.Dimension] {
			rollupFilters = append(rollupFilters, f)
		} else {
			eventFilters = append(eventFilters, f)
		}
	}

	pred, err := Compile(siteID, eventFilters)
	if err != nil {
		return nil, err
	}
	rollupClause, rollupArgs, err := compileConditions(rollupFilters)
	if err != nil {
		return nil, err
	}
	return &RollupPredicate{
		Predicate:    *pred,
		RollupClause: rollupClause,
		RollupArgs:   rollupArgs,
	}, nil
}

// compileConditions builds the AND-joined condition fragment for a filter
// list. Every operand travels as a bound argument.
func compileConditions(filters []Filter) (string, []interface{}, error) {

	var clause strings.Builder
	var args []interface{}
	for _, f := range filters {
		column, ok := allowedDimensions[f.Dimension]
		if !ok {
			return "", nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:        errors2.INVALID_FILTER.Code,
				Message:     errors2.INVALID_FILTER.Message,
				Description: fmt.Sprintf("Unknown filter dimension: %s", f.Dimension),
			}, http.StatusBadRequest)
		}
		if len(f.Values) == 0 {
			return "", nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:        errors2.INVALID_FILTER.Code,
				Message:     errors2.INVALID_FILTER.Message,
				Description: fmt.Sprintf("Filter on %s has no values.", f.Dimension),
			}, http.StatusBadRequest)
		}

		switch f.Operator {
		case OperatorEquals, OperatorIn:
			if len(f.Values) == 1 && f.Operator == OperatorEquals {
				clause.WriteString(fmt.Sprintf(" AND %s = ?", column))
				args = append(args, f.Values[0])
			} else {
				clause.WriteString(fmt.Sprintf(" AND %s IN (%s)", column, placeholders(len(f.Values))))
				for _, v := range f.Values {
					args = append(args, v)
				}
			}
		case OperatorNotEquals:
			if len(f.Values) == 1 {
				clause.WriteString(fmt.Sprintf(" AND %s != ?", column))
				args = append(args, f.Values[0])
			} else {
				clause.WriteString(fmt.Sprintf(" AND %s NOT IN (%s)", column, placeholders(len(f.Values))))
				for _, v := range f.Values {
					args = append(args, v)
				}
			}
		case OperatorContains:
			terms := make([]string, len(f.Values))
			for i, v := range f.Values {
				terms[i] = fmt.Sprintf("%s LIKE ?", column)
				args = append(args, "%"+escapeLike(v)+"%")
			}
			clause.WriteString(" AND (" + strings.Join(terms, " OR ") + ")")
		case OperatorNotContains:
			for _, v := range f.Values {
				clause.WriteString(fmt.Sprintf(" AND %s NOT LIKE ?", column))
				args = append(args, "%"+escapeLike(v)+"%")
			}
		default:
			return "", nil, errors2.NewClientError(errors2.ErrorMessage{
				Code:        errors2.INVALID_FILTER.Code,
				Message:     errors2.INVALID_FILTER.Message,
				Description: fmt.Sprintf("Unknown filter operator: %s", f.Operator),
			}, http.StatusBadRequest)
		}
	}

	return clause.String(), args, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike neutralizes LIKE wildcards in a bound substring term.
func escapeLike(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `%`, `\%`)
	v = strings.ReplaceAll(v, `_`, `\_`)
	return v
}
