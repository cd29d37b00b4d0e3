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

package managers

import (
	"net/http"
	"strings"

	eventhandler "github.com/wso2/web-analytics-service/internal/events/handler"
	healthhandler "github.com/wso2/web-analytics-service/internal/health_check/handler"
	"github.com/wso2/web-analytics-service/internal/system/utils"
	traithandler "github.com/wso2/web-analytics-service/internal/traits/handler"
	userhandler "github.com/wso2/web-analytics-service/internal/users/handler"
)

type ServiceManagerInterface interface {
	RegisterServices(apiBasePath string) error
}

type ServiceManager struct {
	mux *http.ServeMux
}

// NewServiceManager creates a new instance of ServiceManager.
func NewServiceManager(mux *http.ServeMux) ServiceManagerInterface {

	return &ServiceManager{
		mux: mux,
	}
}

// RegisterServices mounts the per-site analytics API and the health
// endpoints. All site-scoped routes go through the single site dispatcher,
// which validates the site id before any handler runs.
func (sm *ServiceManager) RegisterServices(apiBasePath string) error {

	events := eventhandler.NewEventHandler()
	users := userhandler.NewUserHandler()
	traits := traithandler.NewTraitHandler()
	health := healthhandler.NewHealthHandler()

	// Single site dispatcher for all site-scoped resources.
	utils.MountSiteDispatcher(sm.mux, apiBasePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		path := strings.TrimSuffix(r.URL.Path, "/")

		switch path {
		case "/events":
			events.GetEvents(w, r)
		case "/events/count":
			events.GetEventCount(w, r)
		case "/users":
			users.GetUsers(w, r)
		case "/users/by-trait":
			users.GetUsersByTrait(w, r)
		case "/traits/keys":
			traits.GetTraitKeys(w, r)
		case "/traits/values":
			traits.GetTraitValues(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	sm.mux.HandleFunc("/health", health.HandleHealth)
	sm.mux.HandleFunc("/ready", health.HandleReadiness)
	return nil
}
