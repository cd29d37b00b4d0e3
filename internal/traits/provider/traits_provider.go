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
	"github.com/wso2/web-analytics-service/internal/traits/service"
	"github.com/wso2/web-analytics-service/internal/traits/store"
)

// TraitsProviderInterface defines the interface for the traits provider.
type TraitsProviderInterface interface {
	GetTraitIndexService() service.TraitIndexServiceInterface
}

// TraitsProvider is the default implementation of the TraitsProviderInterface.
type TraitsProvider struct{}

// NewTraitsProvider creates a new instance of TraitsProvider.
func NewTraitsProvider() TraitsProviderInterface {

	return &TraitsProvider{}
}

// GetTraitIndexService returns a trait index service wired to the shared
// profile store client.
func (tp *TraitsProvider) GetTraitIndexService() service.TraitIndexServiceInterface {

	return service.NewTraitIndexService(store.NewTraitStore(dbprovider.GetDBClient()))
}
