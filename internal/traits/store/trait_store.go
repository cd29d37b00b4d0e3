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

	pkgerrors "github.com/pkg/errors"

	"github.com/wso2/web-analytics-service/internal/system/database/client"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/log"
	"github.com/wso2/web-analytics-service/internal/traits/model"
)

// TraitStoreInterface is the relational trait index surface consumed by the
// trait index service.
type TraitStoreInterface interface {
	SelectTraitKeys(ctx context.Context, siteID int64) ([]model.TraitKey, error)
	SelectTraitValues(ctx context.Context, siteID int64, key string, limit, offset int) ([]model.TraitValue, error)
	CountTraitValues(ctx context.Context, siteID int64, key string) (uint64, error)
}

// TraitStore indexes the trait documents stored alongside user profiles.
type TraitStore struct {
	client client.DBClientInterface
}

// NewTraitStore creates a trait store over the given client.
func NewTraitStore(c client.DBClientInterface) *TraitStore {

	return &TraitStore{client: c}
}

// SelectTraitKeys returns every distinct trait key in use for the site with
// the number of users carrying it, most common first.
func (s *TraitStore) SelectTraitKeys(ctx context.Context, siteID int64) ([]model.TraitKey, error) {

	query := `SELECT k.key AS key, COUNT(*) AS user_count
		FROM user_profiles p,
		LATERAL jsonb_object_keys(p.traits) AS k(key)
		WHERE p.site_id = $1
		GROUP BY k.key
		ORDER BY user_count DESC, key`

	results, err := s.client.ExecuteQuery(ctx, query, siteID)
	if err != nil {
		return nil, s.queryError(query, err)
	}

	keys := make([]model.TraitKey, 0, len(results))
	for _, row := range results {
		keys = append(keys, model.TraitKey{
			Key:       stringValue(row["key"]),
			UserCount: uint64Value(row["user_count"]),
		})
	}
	return keys, nil
}

// SelectTraitValues returns one page of distinct values under the given
// key, most common first. Ties break on the value itself so pagination is
// stable.
func (s *TraitStore) SelectTraitValues(ctx context.Context, siteID int64, key string, limit, offset int) ([]model.TraitValue, error) {

	query := `SELECT traits->>$2 AS value, COUNT(*) AS user_count
		FROM user_profiles
		WHERE site_id = $1 AND traits ? $2
		GROUP BY value
		ORDER BY user_count DESC, value
		LIMIT $3 OFFSET $4`

	results, err := s.client.ExecuteQuery(ctx, query, siteID, key, limit, offset)
	if err != nil {
		return nil, s.queryError(query, err)
	}

	values := make([]model.TraitValue, 0, len(results))
	for _, row := range results {
		values = append(values, model.TraitValue{
			Value:     stringValue(row["value"]),
			UserCount: uint64Value(row["user_count"]),
		})
	}
	return values, nil
}

// CountTraitValues counts the distinct values stored under the given key.
func (s *TraitStore) CountTraitValues(ctx context.Context, siteID int64, key string) (uint64, error) {

	query := `SELECT COUNT(DISTINCT traits->>$2) AS total
		FROM user_profiles
		WHERE site_id = $1 AND traits ? $2`

	results, err := s.client.ExecuteQuery(ctx, query, siteID, key)
	if err != nil {
		return 0, s.queryError(query, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return uint64Value(results[0]["total"]), nil
}

func (s *TraitStore) queryError(query string, err error) error {

	log.GetLogger().Error("Trait store query failed",
		log.Error(err), log.String("query", query))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:    errors2.GET_TRAITS.Code,
		Message: errors2.GET_TRAITS.Message,
	}, pkgerrors.Wrap(err, "trait store query"))
}

func stringValue(v interface{}) string {

	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return ""
	}
}

func uint64Value(v interface{}) uint64 {

	switch t := v.(type) {
	case int64:
		return uint64(t)
	case int32:
		return uint64(t)
	case uint64:
		return t
	case float64:
		return uint64(t)
	default:
		return 0
	}
}
