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

package provider

import (
	"sync"

	"github.com/wso2/web-analytics-service/internal/system/config"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/eventstore/client"
)

var (
	esClient client.EventStoreClientInterface
	initOnce sync.Once
)

// Init opens the event store connection once at startup.
func Init(cfg config.EventStoreConfig) error {

	var initErr error
	initOnce.Do(func() {
		c, err := client.NewEventStoreClient(cfg)
		if err != nil {
			initErr = errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.EVENT_STORE_INIT.Code,
				Message:     errors2.EVENT_STORE_INIT.Message,
				Description: "Failed to open the event store connection.",
			}, err)
			return
		}
		esClient = c
	})
	return initErr
}

// GetEventStoreClient returns the shared event store client.
func GetEventStoreClient() client.EventStoreClientInterface {

	if esClient == nil {
		panic("event store client is not initialized")
	}
	return esClient
}
