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

package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wso2/web-analytics-service/internal/system/constants"
	customerrors "github.com/wso2/web-analytics-service/internal/system/errors"
	"github.com/wso2/web-analytics-service/internal/system/log"
)

// HandleError sends an HTTP error response based on the provided error.
// Client errors are returned verbatim; server errors are logged with a
// trace id and reduced to a generic message.
func HandleError(w http.ResponseWriter, err error) {

	w.Header().Set("Content-Type", "application/json")

	var clientError *customerrors.ClientError
	if ok := errors.As(err, &clientError); ok {
		status := clientError.StatusCode
		if status == 0 {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(clientError.ErrorMessage)
		return
	}

	traceID := uuid.NewString()
	var serverError *customerrors.ServerError
	if ok := errors.As(err, &serverError); ok {
		log.GetLogger().Error(serverError.Error(), log.String("trace_id", traceID))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(customerrors.ErrorMessage{
			Code:        serverError.Code,
			Message:     serverError.Message,
			Description: "An internal error occurred while querying analytics data.",
			TraceID:     traceID,
		})
		return
	}

	log.GetLogger().Error(err.Error(), log.String("trace_id", traceID))
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":    "Internal server error",
		"trace_id": traceID,
	})
}

// WriteJSONResponse writes a 200 response with the given payload.
func WriteJSONResponse(w http.ResponseWriter, payload interface{}) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

// SiteFromContext returns the validated site id placed in the request
// context by the site dispatcher. Handlers must never read a site id from
// anywhere else.
func SiteFromContext(r *http.Request) int64 {

	return r.Context().Value(constants.SiteContextKey).(int64)
}

// MountSiteDispatcher routes /api/v1/sites/{siteId}/... requests. It
// validates the site id segment and stores it in the request context before
// the per-resource handler runs. Upstream deployment is expected to have
// authorized the caller for this site already.
func MountSiteDispatcher(mux *http.ServeMux, apiBasePath string, handlerFunc http.HandlerFunc) {

	prefix := apiBasePath + "/" + constants.SitesApiPath + "/"
	mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		parts := strings.SplitN(rest, "/", 2)

		siteID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || siteID <= 0 {
			HandleError(w, customerrors.NewClientError(customerrors.ErrorMessage{
				Code:        customerrors.INVALID_SITE_ID.Code,
				Message:     customerrors.INVALID_SITE_ID.Message,
				Description: customerrors.INVALID_SITE_ID.Description,
			}, http.StatusBadRequest))
			return
		}

		relativePath := "/"
		if len(parts) == 2 {
			relativePath += parts[1]
		}

		ctx := context.WithValue(r.Context(), constants.SiteContextKey, siteID)
		r = r.WithContext(ctx)
		r.URL.Path = strings.TrimSuffix(relativePath, "/")

		handlerFunc(w, r)
	})
}

// timestampLayouts are the accepted wire formats for cursor and polling
// timestamps. The first is what this service emits.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a caller-supplied timestamp parameter.
func ParseTimestamp(value string) (time.Time, error) {

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, customerrors.NewClientError(customerrors.ErrorMessage{
		Code:        customerrors.BAD_REQUEST.Code,
		Message:     customerrors.BAD_REQUEST.Message,
		Description: fmt.Sprintf("Unparseable timestamp: %s", value),
	}, http.StatusBadRequest)
}

// QueryInt reads an integer query parameter with a default.
func QueryInt(r *http.Request, name string, def int) (int, error) {

	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, customerrors.NewClientError(customerrors.ErrorMessage{
			Code:        customerrors.BAD_REQUEST.Code,
			Message:     customerrors.BAD_REQUEST.Message,
			Description: fmt.Sprintf("%s must be an integer.", name),
		}, http.StatusBadRequest)
	}
	return n, nil
}
