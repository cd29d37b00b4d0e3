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

	"golang.org/x/sync/errgroup"

	"github.com/wso2/web-analytics-service/internal/system/constants"
	"github.com/wso2/web-analytics-service/internal/traits/model"
	"github.com/wso2/web-analytics-service/internal/traits/store"
)

// TraitIndexServiceInterface exposes the trait vocabulary of a site: which
// keys are in use and which values each key takes.
type TraitIndexServiceInterface interface {
	ListKeys(ctx context.Context, siteID int64) ([]model.TraitKey, error)
	ListValues(ctx context.Context, siteID int64, key string, limit, offset int) (*model.ValuesPage, error)
}

// TraitIndexService is the default implementation of
// TraitIndexServiceInterface.
type TraitIndexService struct {
	store store.TraitStoreInterface
}

// NewTraitIndexService creates a trait index service over the given store.
func NewTraitIndexService(st store.TraitStoreInterface) *TraitIndexService {

	return &TraitIndexService{store: st}
}

// ListKeys returns every trait key in use for the site.
func (s *TraitIndexService) ListKeys(ctx context.Context, siteID int64) ([]model.TraitKey, error) {

	keys, err := s.store.SelectTraitKeys(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []model.TraitKey{}
	}
	return keys, nil
}

// ListValues returns one page of distinct values under the given key with
// an exact total and hasMore indicator.
func (s *TraitIndexService) ListValues(ctx context.Context, siteID int64, key string, limit, offset int) (*model.ValuesPage, error) {

	if limit <= 0 {
		limit = constants.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var values []model.TraitValue
	var total uint64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		values, err = s.store.SelectTraitValues(gctx, siteID, key, limit, offset)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CountTraitValues(gctx, siteID, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if values == nil {
		values = []model.TraitValue{}
	}
	return &model.ValuesPage{
		Values:  values,
		Total:   int(total),
		HasMore: offset+limit < int(total),
	}, nil
}
