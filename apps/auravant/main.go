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

package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/stockparfait/auravant/auravant"
	"github.com/stockparfait/auravant/db"
	"github.com/stockparfait/auravant/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"

	toml "github.com/pelletier/go-toml/v2"
)

// TokenEnv is the environment variable which overrides the token in the
// config file. It may also be set in a .env file of the working directory.
const TokenEnv = "AURAVANT_TOKEN"

type Flags struct {
	ConfigDir string // default: ~/.auravant
	Token     string // default: $AURAVANT_TOKEN
	LogLevel  logging.Level
	// Exactly one of the following actions must be present.
	Farms       bool
	Fields      string // farm ID to list fields for
	AllFields   bool
	NDVI        string // field ID to print NDVI history for
	Biomass     bool
	Locate      string // "lon,lat"
	CreateFarm  string // name of the new farm
	AddField    string // farm ID to add a field to
	DeleteField string // field ID
	// Action parameters.
	From   db.Date // NDVI range start; default: earliest
	To     db.Date // NDVI range end; default: latest
	Latest bool    // print only the first NDVI record of the range
	Name   string  // name of the new field
	Shape  string  // WKT polygon of the new field
	// Output format; default: text.
	CSV  bool
	JSON bool
	XLSX string // Excel file to write the table to
}

func parseFlags(args []string) (*Flags, error) {
	var flags Flags
	fs := flag.NewFlagSet("auravant", flag.ExitOnError)
	fs.StringVar(&flags.ConfigDir, "config",
		filepath.Join(os.Getenv("HOME"), ".auravant"),
		"directory with config.toml")
	fs.StringVar(&flags.Token, "token", os.Getenv(TokenEnv),
		"API bearer token; overrides the config file")
	flags.LogLevel = logging.Info
	fs.Var(&flags.LogLevel, "log-level", "Log level: debug, info, warning, error")
	fs.BoolVar(&flags.Farms, "farms", false, "list farms")
	fs.StringVar(&flags.Fields, "fields", "", "list fields of the farm ID")
	fs.BoolVar(&flags.AllFields, "all-fields", false, "list fields of all farms")
	fs.StringVar(&flags.NDVI, "ndvi", "", "print NDVI history of the field ID")
	fs.BoolVar(&flags.Biomass, "biomass", false,
		"print max biomass per crop from the local dataset")
	fs.StringVar(&flags.Locate, "locate", "",
		"list fields containing the point given as lon,lat")
	fs.StringVar(&flags.CreateFarm, "create-farm", "",
		"create a farm with this name and its first field (requires -name, -shape)")
	fs.StringVar(&flags.AddField, "add-field", "",
		"add a field to the farm ID (requires -name, -shape)")
	fs.StringVar(&flags.DeleteField, "delete-field", "", "delete the field ID")
	fs.Var(&flags.From, "from", "start date of NDVI history, YYYY-MM-DD")
	fs.Var(&flags.To, "to", "end date of NDVI history, YYYY-MM-DD")
	fs.BoolVar(&flags.Latest, "latest", false, "print only the first NDVI record")
	fs.StringVar(&flags.Name, "name", "", "name of the new field")
	fs.StringVar(&flags.Shape, "shape", "", "WKT polygon of the new field")
	fs.BoolVar(&flags.CSV, "csv", false, "print table in CSV format; default: text")
	fs.BoolVar(&flags.JSON, "json", false, "print table as JSON records; default: text")
	fs.StringVar(&flags.XLSX, "xlsx", "", "write table to this Excel file instead of printing")

	err := fs.Parse(args)
	if err != nil {
		return nil, err
	}
	actions := 0
	for _, set := range []bool{
		flags.Farms, flags.Fields != "", flags.AllFields, flags.NDVI != "",
		flags.Biomass, flags.Locate != "", flags.CreateFarm != "",
		flags.AddField != "", flags.DeleteField != "",
	} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return nil, errors.Reason("expected exactly one of -farms, -fields, " +
			"-all-fields, -ndvi, -biomass, -locate, -create-farm, -add-field " +
			"or -delete-field")
	}
	if (flags.CreateFarm != "" || flags.AddField != "") &&
		(flags.Name == "" || flags.Shape == "") {
		return nil, errors.Reason("-create-farm and -add-field require -name and -shape")
	}
	formats := 0
	for _, set := range []bool{flags.CSV, flags.JSON, flags.XLSX != ""} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return nil, errors.Reason("-csv, -json and -xlsx are mutually exclusive")
	}
	return &flags, nil
}

type Config struct {
	Token      string `toml:"token" validate:"required"`    // bearer token of the Auravant user
	URL        string `toml:"url" validate:"omitempty,url"` // default: auravant.URL
	Dataset    string `toml:"dataset"`                      // default: ./dataset/All_Harvest.csv
	DateColumn string `toml:"date_column"`                  // default: Fecha
}

func parseConfig(dir string) (*Config, error) {
	filePath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			sample := `token = "YourSecretAuravantToken"
dataset = "./dataset/All_Harvest.csv"
`
			err = errors.Annotate(err,
				"config file '%s' does not exist.\nPlease create config file containing:\n%s"+
					"or set %s in the environment",
				filePath, sample, TokenEnv)
			return nil, err
		} else {
			return nil, errors.Annotate(err,
				"cannot check config file for existence: '%s'", filePath)
		}
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open config file %s", filePath)
	}
	defer f.Close()

	d := toml.NewDecoder(f)
	var c Config
	if err := d.Decode(&c); err != nil {
		return nil, errors.Annotate(err, "failed to read config file %s", filePath)
	}
	return &c, nil
}

// loadConfig reads the config file, which may be omitted when the token is
// given by the flags.
func loadConfig(flags *Flags) (*Config, error) {
	_, statErr := os.Stat(filepath.Join(flags.ConfigDir, "config.toml"))
	var c *Config
	if flags.Token != "" && errors.Is(statErr, os.ErrNotExist) {
		c = &Config{}
	} else {
		var err error
		if c, err = parseConfig(flags.ConfigDir); err != nil {
			return nil, err
		}
	}
	if flags.Token != "" {
		c.Token = flags.Token
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, errors.Annotate(err, "invalid config; the token may also be set in %s",
			TokenEnv)
	}
	return c, nil
}

func newClient(c *Config) *auravant.Client {
	client := auravant.NewClient(c.Token)
	if c.URL != "" {
		client = client.WithURL(c.URL)
	}
	if c.Dataset != "" {
		client = client.WithDataset(c.Dataset)
	}
	if c.DateColumn != "" {
		hc := db.NewHarvestConfig()
		hc.DateColumn = c.DateColumn
		client = client.WithHarvestConfig(hc)
	}
	return client
}

func parsePoint(s string) (lon, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errors.Reason("point must be lon,lat: '%s'", s)
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, errors.Annotate(err, "failed to parse longitude")
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, errors.Annotate(err, "failed to parse latitude")
	}
	return
}

func ndviTable(ctx context.Context, client *auravant.Client, flags *Flags) (*table.Table, error) {
	if flags.Latest {
		r, err := client.LatestNDVI(ctx, flags.NDVI, flags.From, flags.To)
		if err != nil {
			return nil, err
		}
		tbl := table.NewTable(auravant.NDVIHeader()...)
		tbl.AddRow(r)
		return tbl, nil
	}
	h, err := client.NDVI(ctx, flags.NDVI, flags.From, flags.To)
	if err != nil {
		return nil, err
	}
	if h.Len() > 0 {
		s := h.Summary()
		logging.Infof(ctx, "NDVI of %d records: min=%g median=%g max=%g",
			s.Len(), s.Min(), s.Median(), s.Max())
	}
	return h.Table(), nil
}

// mutate runs the requested mutation, returning the server response.
func mutate(ctx context.Context, client *auravant.Client, flags *Flags) (map[string]any, error) {
	if flags.DeleteField != "" {
		return client.DeleteField(ctx, flags.DeleteField)
	}
	if flags.CreateFarm != "" {
		return client.CreateFarm(ctx, flags.CreateFarm, flags.Name, flags.Shape)
	}
	return client.AddField(ctx, flags.AddField, flags.Name, flags.Shape)
}

func writeXLSX(tbl *table.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotate(err, "failed to create '%s'", path)
	}
	if err := tbl.WriteXLSX(f, table.Params{}); err != nil {
		f.Close()
		return errors.Annotate(err, "failed to write '%s'", path)
	}
	return f.Close()
}

func writeTable(tbl *table.Table, flags *Flags, w io.Writer) error {
	switch {
	case flags.XLSX != "":
		return writeXLSX(tbl, flags.XLSX)
	case flags.CSV:
		return tbl.WriteCSV(w, table.Params{})
	case flags.JSON:
		return tbl.WriteJSON(w, table.Params{})
	}
	return tbl.WriteText(w, table.Params{})
}

func run(ctx context.Context, flags *Flags, w io.Writer) error {
	config, err := loadConfig(flags)
	if err != nil {
		return errors.Annotate(err, "failed to load config")
	}
	client := newClient(config)

	if flags.CreateFarm != "" || flags.AddField != "" || flags.DeleteField != "" {
		res, err := mutate(ctx, client, flags)
		if err != nil {
			return errors.Annotate(err, "request failed")
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return errors.Annotate(err, "failed to write response")
		}
		return nil
	}

	var tbl *table.Table
	switch {
	case flags.Farms:
		tbl, err = client.ListFarms(ctx)
	case flags.Fields != "":
		tbl, err = client.ListFields(ctx, flags.Fields)
	case flags.AllFields:
		tbl, err = client.ListAllFields(ctx)
	case flags.NDVI != "":
		tbl, err = ndviTable(ctx, client, flags)
	case flags.Biomass:
		tbl, err = client.MaxBiomass(ctx)
	case flags.Locate != "":
		var lon, lat float64
		if lon, lat, err = parsePoint(flags.Locate); err != nil {
			return errors.Annotate(err, "invalid -locate")
		}
		tbl, err = client.LocateFields(ctx, lon, lat)
	}
	if err != nil {
		return errors.Annotate(err, "failed to get data")
	}
	if tbl == nil {
		return nil
	}
	if err := writeTable(tbl, flags, w); err != nil {
		return errors.Annotate(err, "failed to write table")
	}
	return nil
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load() // ignore missing file
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		ctx = logging.Use(ctx, logging.DefaultGoLogger(logging.Info))
		logging.Errorf(ctx, "failed to parse flags: %s", err.Error())
		os.Exit(1)
	}
	ctx = logging.Use(ctx, logging.DefaultGoLogger(flags.LogLevel))

	if err := run(ctx, flags, os.Stdout); err != nil {
		logging.Errorf(ctx, err.Error())
		os.Exit(1)
	}
}
