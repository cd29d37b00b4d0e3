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

package provider

import (
	dbprovider "github.com/wso2/web-analytics-service/internal/system/database/provider"
	esprovider "github.com/wso2/web-analytics-service/internal/system/eventstore/provider"
	"github.com/wso2/web-analytics-service/internal/users/service"
	"github.com/wso2/web-analytics-service/internal/users/store"
)

// UsersProviderInterface defines the interface for the users provider.
type UsersProviderInterface interface {
	GetUserAggregationService() service.UserAggregationServiceInterface
}

// UsersProvider is the default implementation of the UsersProviderInterface.
type UsersProvider struct{}

// NewUsersProvider creates a new instance of UsersProvider.
func NewUsersProvider() UsersProviderInterface {

	return &UsersProvider{}
}

// GetUserAggregationService returns a user aggregation service wired to the
// shared event store and profile store clients.
func (up *UsersProvider) GetUserAggregationService() service.UserAggregationServiceInterface {

	return service.NewUserAggregationService(
		store.NewUserAggStore(esprovider.GetEventStoreClient()),
		store.NewProfileStore(dbprovider.GetDBClient()),
	)
}
