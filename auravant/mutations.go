// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auravant

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// addField posts a new field. The form must identify the farm either by name
// (a new farm) or by ID. The shape is sent as given; the server checks it.
func (c *Client) addField(ctx context.Context, form url.Values) (map[string]any, error) {
	if strings.TrimSpace(form.Get("shape")) == "" {
		return nil, errors.Reason("%s: shape of the field is empty", endpointAdd)
	}
	body, err := c.postForm(ctx, endpointAdd, form)
	if err != nil {
		return nil, err
	}
	return decodeRaw(endpointAdd, body)
}

// CreateFarm creates a new farm with its first field, whose shape is WKT text
// such as Polygon.String(). The response is returned as decoded from the
// server, including any error it may report.
func (c *Client) CreateFarm(ctx context.Context, farmName, fieldName, shape string) (map[string]any, error) {
	form := url.Values{}
	form.Set("nombre", fieldName)
	form.Set("shape", shape)
	form.Set("nombrecampo", farmName)
	logging.Infof(ctx, "creating farm '%s' with field '%s'", farmName, fieldName)
	return c.addField(ctx, form)
}

// AddField adds a field to an existing farm. The farm ID must be an integer.
func (c *Client) AddField(ctx context.Context, farmID, fieldName, shape string) (map[string]any, error) {
	id, err := strconv.Atoi(strings.TrimSpace(farmID))
	if err != nil {
		return nil, errors.Annotate(err, "farm ID must be an integer: '%s'", farmID)
	}
	form := url.Values{}
	form.Set("nombre", fieldName)
	form.Set("shape", shape)
	form.Set("idcampo", strconv.Itoa(id))
	logging.Infof(ctx, "adding field '%s' to farm %d", fieldName, id)
	return c.addField(ctx, form)
}

// DeleteField deletes the field. Deleting a field that no longer exists
// returns whatever the server responds.
func (c *Client) DeleteField(ctx context.Context, fieldID string) (map[string]any, error) {
	query := url.Values{}
	query.Set("lote", fieldID)
	logging.Infof(ctx, "deleting field %s", fieldID)
	body, err := c.get(ctx, endpointDelete, query)
	if err != nil {
		return nil, err
	}
	return decodeRaw(endpointDelete, body)
}
