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
	"encoding/json"
	"strings"

	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"

	"github.com/wso2/web-analytics-service/internal/system/database/client"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/log"
	"github.com/wso2/web-analytics-service/internal/users/model"
)

// searchConditions maps each allowed search_field to its fixed SQL
// condition. The map is the only path from a request field to SQL text.
var searchConditions = map[string]string{
	"username": "traits->>'username' ILIKE $2",
	"name":     "traits->>'name' ILIKE $2",
	"email":    "traits->>'email' ILIKE $2",
	"user_id":  "user_id ILIKE $2",
}

// ProfileStoreInterface is the relational profile store surface consumed by
// the user aggregation service.
type ProfileStoreInterface interface {
	SearchProfileIDs(ctx context.Context, siteID int64, field, term string, limit int) ([]string, error)
	GetTraitsByUserIDs(ctx context.Context, siteID int64, userIDs []string) (map[string]json.RawMessage, error)
	ProfilesByTraitValue(ctx context.Context, siteID int64, key, value string, limit, offset int) ([]model.Profile, error)
	CountProfilesByTraitValue(ctx context.Context, siteID int64, key, value string) (uint64, error)
}

// ProfileStore reads identified user profiles and their traits.
type ProfileStore struct {
	client client.DBClientInterface
}

// NewProfileStore creates a profile store over the given client.
func NewProfileStore(c client.DBClientInterface) *ProfileStore {

	return &ProfileStore{client: c}
}

// SearchProfileIDs returns the ids of profiles whose search field contains
// the term, capped at limit. The field must come from the search whitelist.
func (s *ProfileStore) SearchProfileIDs(ctx context.Context, siteID int64, field, term string, limit int) ([]string, error) {

	condition, ok := searchConditions[field]
	if !ok {
		condition = searchConditions["username"]
	}

	query := "SELECT user_id FROM user_profiles WHERE site_id = $1 AND " +
		condition + " LIMIT $3"

	results, err := s.client.ExecuteQuery(ctx, query, siteID, "%"+escapeLikePattern(term)+"%", limit)
	if err != nil {
		return nil, s.queryError(errors2.SEARCH_PROFILES, query, err)
	}

	ids := make([]string, 0, len(results))
	for _, row := range results {
		ids = append(ids, stringValue(row["user_id"]))
	}
	return ids, nil
}

// GetTraitsByUserIDs returns the traits document for each of the given
// profile ids. Ids without a profile row are simply absent from the map.
func (s *ProfileStore) GetTraitsByUserIDs(ctx context.Context, siteID int64, userIDs []string) (map[string]json.RawMessage, error) {

	if len(userIDs) == 0 {
		return map[string]json.RawMessage{}, nil
	}

	query := "SELECT user_id, traits FROM user_profiles WHERE site_id = $1 AND user_id = ANY($2)"

	results, err := s.client.ExecuteQuery(ctx, query, siteID, pq.Array(userIDs))
	if err != nil {
		return nil, s.queryError(errors2.GET_TRAITS, query, err)
	}

	traits := make(map[string]json.RawMessage, len(results))
	for _, row := range results {
		traits[stringValue(row["user_id"])] = rawJSONValue(row["traits"])
	}
	return traits, nil
}

// ProfilesByTraitValue returns one page of profiles whose traits document
// holds the given value under the given key, ordered by user id for a
// stable pagination order.
func (s *ProfileStore) ProfilesByTraitValue(ctx context.Context, siteID int64, key, value string, limit, offset int) ([]model.Profile, error) {

	query := `SELECT user_id, traits FROM user_profiles
		WHERE site_id = $1 AND traits->>$2 = $3
		ORDER BY user_id
		LIMIT $4 OFFSET $5`

	results, err := s.client.ExecuteQuery(ctx, query, siteID, key, value, limit, offset)
	if err != nil {
		return nil, s.queryError(errors2.GET_TRAITS, query, err)
	}

	profiles := make([]model.Profile, 0, len(results))
	for _, row := range results {
		profiles = append(profiles, model.Profile{
			UserID: stringValue(row["user_id"]),
			Traits: rawJSONValue(row["traits"]),
		})
	}
	return profiles, nil
}

// CountProfilesByTraitValue counts the profiles matching a trait value.
func (s *ProfileStore) CountProfilesByTraitValue(ctx context.Context, siteID int64, key, value string) (uint64, error) {

	query := "SELECT COUNT(*) AS total FROM user_profiles WHERE site_id = $1 AND traits->>$2 = $3"

	results, err := s.client.ExecuteQuery(ctx, query, siteID, key, value)
	if err != nil {
		return 0, s.queryError(errors2.GET_TRAITS, query, err)
	}
	if len(results) == 0 {
		return 0, nil
	}
	return uint64Value(results[0]["total"]), nil
}

func (s *ProfileStore) queryError(msg errors2.ErrorMessage, query string, err error) error {

	log.GetLogger().Error("Profile store query failed",
		log.Error(err), log.String("query", query))
	return errors2.NewServerError(errors2.ErrorMessage{
		Code:    msg.Code,
		Message: msg.Message,
	}, pkgerrors.Wrap(err, "profile store query"))
}

// escapeLikePattern escapes LIKE metacharacters so the search term is
// matched literally inside the surrounding wildcards.
func escapeLikePattern(s string) string {

	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
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

func rawJSONValue(v interface{}) json.RawMessage {

	switch t := v.(type) {
	case []byte:
		return json.RawMessage(t)
	case string:
		return json.RawMessage(t)
	default:
		return nil
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
