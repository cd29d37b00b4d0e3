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

package service

import (
	"context"
	"fmt"

	dbprovider "github.com/wso2/web-analytics-service/internal/system/database/provider"
	esprovider "github.com/wso2/web-analytics-service/internal/system/eventstore/provider"
)

// HealthCheckServiceInterface defines the service interface.
type HealthCheckServiceInterface interface {
	CheckReadiness(ctx context.Context) error
}

// HealthCheckService is the default implementation.
type HealthCheckService struct{}

// GetHealthCheckService returns a new instance.
func GetHealthCheckService() HealthCheckServiceInterface {
	return &HealthCheckService{}
}

// CheckReadiness verifies both backing stores answer a ping. The service is
// not ready unless the event store and the profile store are both reachable.
func (h HealthCheckService) CheckReadiness(ctx context.Context) error {

	if err := dbprovider.GetDBClient().Ping(ctx); err != nil {
		return fmt.Errorf("profile store connectivity check failed: %v", err)
	}
	if err := esprovider.GetEventStoreClient().Ping(ctx); err != nil {
		return fmt.Errorf("event store connectivity check failed: %v", err)
	}
	return nil
}
