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
	"database/sql"
	"fmt"
	"sync"

	"github.com/wso2/web-analytics-service/internal/system/config"
	"github.com/wso2/web-analytics-service/internal/system/database/client"
	errors2 "github.com/wso2/web-analytics-service/internal/system/errors"
)

var (
	dbClient client.DBClientInterface
	initOnce sync.Once
)

// Init opens the profile store connection pool once at startup. Services
// receive the resulting client by injection; nothing opens connections per
// request.
func Init(cfg config.DataSourceConfig) error {

	var initErr error
	initOnce.Do(func() {
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Hostname, cfg.Port, cfg.Username, cfg.Password, cfg.Name, cfg.SSLMode)

		db, err := sql.Open("postgres", dsn)
		if err != nil {
			initErr = errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.DB_CLIENT_INIT.Code,
				Message:     errors2.DB_CLIENT_INIT.Message,
				Description: "Failed to open the profile store connection pool.",
			}, err)
			return
		}
		if err := db.Ping(); err != nil {
			initErr = errors2.NewServerError(errors2.ErrorMessage{
				Code:        errors2.DB_CLIENT_INIT.Code,
				Message:     errors2.DB_CLIENT_INIT.Message,
				Description: "Failed to ping the profile store.",
			}, err)
			return
		}
		dbClient = client.NewDBClient(db)
	})
	return initErr
}

// SetTestDB installs a pre-opened connection pool. Test harnesses use this
// to point the shared client at a containerized database.
func SetTestDB(db *sql.DB) {

	dbClient = client.NewDBClient(db)
}

// GetDBClient returns the shared profile store client.
func GetDBClient() client.DBClientInterface {

	if dbClient == nil {
		panic("profile store client is not initialized")
	}
	return dbClient
}
