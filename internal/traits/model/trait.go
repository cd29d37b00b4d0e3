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

// TraitKey is one distinct trait key and the number of identified users
// carrying it.
type TraitKey struct {
	Key       string `json:"key"`
	UserCount uint64 `json:"user_count"`
}

// TraitValue is one distinct value of a trait key and the number of
// identified users carrying that value.
type TraitValue struct {
	Value     string `json:"value"`
	UserCount uint64 `json:"user_count"`
}

// ValuesPage is the paginated trait value listing. HasMore is exact:
// offset+limit compared against the true distinct value count.
type ValuesPage struct {
	Values  []TraitValue `json:"values"`
	Total   int          `json:"total"`
	HasMore bool         `json:"hasMore"`
}
