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
	"os"
	"strconv"

	"github.com/stockparfait/auravant/db"
	"github.com/stockparfait/auravant/stats"
	"github.com/stockparfait/auravant/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// BiomassRow is the maximum biomass of a crop over the dataset.
type BiomassRow struct {
	Vegetation string
	MaxBiomass float64
}

var _ table.Row = BiomassRow{}

// BiomassHeader is the header of the max biomass table.
func BiomassHeader() []string {
	return []string{"Vegetation", "Max_Biomass"}
}

// CSV implements table.Row.
func (r BiomassRow) CSV() []string {
	return []string{r.Vegetation, strconv.FormatFloat(r.MaxBiomass, 'f', -1, 64)}
}

// ReadHarvest reads the harvest dataset from the file. A missing file results
// in DatasetMissingError.
func ReadHarvest(path string, c *db.HarvestConfig) (*db.Harvest, error) {
	if c == nil {
		c = db.NewHarvestConfig()
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &DatasetMissingError{Path: path}
		}
		return nil, errors.Annotate(err, "failed to open '%s'", path)
	}
	defer f.Close()

	h, err := db.ReadCSVHarvest(f, c)
	if err != nil {
		return nil, errors.Annotate(err, "failed to read '%s'", path)
	}
	return h, nil
}

// MaxBiomassTable computes the maximum value of every crop column, ignoring
// missing cells. A column with no values has NaN maximum.
func MaxBiomassTable(h *db.Harvest) *table.Table {
	t := table.NewTable(BiomassHeader()...)
	for i, crop := range h.Crops {
		t.AddRow(BiomassRow{
			Vegetation: crop,
			MaxBiomass: stats.NewSample(h.Values[i]).DropNaN().Max(),
		})
	}
	return t
}

// MaxBiomass summarizes the local harvest dataset with one row per crop:
// Vegetation, Max_Biomass. When the dataset does not exist, it logs how to
// build it and returns nil table without an error.
func (c *Client) MaxBiomass(ctx context.Context) (*table.Table, error) {
	h, err := ReadHarvest(c.dataset, c.harvest)
	if err != nil {
		if missing, ok := err.(*DatasetMissingError); ok {
			logging.Warningf(ctx, "%s", missing.Error())
			return nil, nil
		}
		return nil, err
	}
	logging.Infof(ctx, "read %d harvest rows with %d crops from %s",
		h.NumRows(), len(h.Crops), c.dataset)
	return MaxBiomassTable(h), nil
}
