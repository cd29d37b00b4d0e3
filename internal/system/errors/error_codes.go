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

package errors

const errorPrefix = "WAS-"

var (
	// Server error codes

	GET_EVENTS = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Error while querying events.",
	}

	COUNT_EVENTS = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while counting events.",
	}

	AGGREGATE_USERS = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while aggregating users.",
	}

	SEARCH_PROFILES = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while searching user profiles.",
	}

	GET_TRAITS = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while fetching trait data.",
	}

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Unable to initialize profile store client.",
	}

	EVENT_STORE_INIT = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Unable to initialize event store client.",
	}

	// Client error codes

	BAD_REQUEST = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "Invalid request format.",
	}

	INVALID_FILTER = ErrorMessage{
		Code:    errorPrefix + "11002",
		Message: "Invalid filter.",
	}

	INVALID_BUCKET = ErrorMessage{
		Code:    errorPrefix + "11003",
		Message: "Invalid time bucket.",
	}

	INVALID_TIMEZONE = ErrorMessage{
		Code:    errorPrefix + "11004",
		Message: "Invalid timezone.",
	}

	INVALID_TIME_RANGE = ErrorMessage{
		Code:    errorPrefix + "11005",
		Message: "Invalid time range.",
	}

	INVALID_SITE_ID = ErrorMessage{
		Code:        errorPrefix + "11006",
		Message:     "Invalid site id.",
		Description: "Site id must be a positive integer.",
	}

	MISSING_PARAMETER = ErrorMessage{
		Code:    errorPrefix + "11007",
		Message: "Missing required parameter.",
	}
)
