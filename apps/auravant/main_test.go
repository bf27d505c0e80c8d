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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockparfait/auravant/db"
	"github.com/stockparfait/logging"
	"github.com/xuri/excelize/v2"

	. "github.com/smartystreets/goconvey/convey"
)

func testHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer secret" {
		fmt.Fprint(w, `{"error": "Invalid token", "code": 401}`)
		return
	}
	switch r.URL.Path {
	case "/api/getfields":
		fmt.Fprint(w, `{"user": {"farms": {
  "farm1": {"name": "Farm One", "bbox": [0, 0, 10, 10], "fields": {
    "A": {"name": "Lote A", "shapes": {"current": {
      "bbox": [0, 0, 1, 1], "polygon": "POLYGON((0 0,1 0,1 1,0 1,0 0))", "area": 12.5}}}}}}}}`)
	case "/api/fields/ndvi":
		fmt.Fprint(w, `{"ndvi": [
  {"date": "2023-01-01", "ndvi_mean": 0.5},
  {"date": "2023-06-01", "ndvi_mean": 0.7}]}`)
	case "/api/borrarlotes":
		fmt.Fprintf(w, `{"status": "ok", "lote": %q}`, r.URL.Query().Get("lote"))
	case "/api/agregarlote":
		r.ParseForm()
		fmt.Fprintf(w, `{"nombre": %q, "idcampo": %q}`, r.PostForm.Get("nombre"),
			r.PostForm.Get("idcampo"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestApp(t *testing.T) {
	t.Parallel()

	tmpdir, tmpdirErr := os.MkdirTemp("", "test_auravant_app")
	defer os.RemoveAll(tmpdir)

	server := httptest.NewServer(http.HandlerFunc(testHandler))
	defer server.Close()

	Convey("Setup succeeded", t, func() {
		So(tmpdirErr, ShouldBeNil)
	})

	Convey("parseFlags", t, func() {
		Convey("all flags", func() {
			flags, err := parseFlags([]string{
				"-config", "path/to/config", "-token", "tok",
				"-log-level", "warning", "-ndvi", "42", "-from", "2023-03-01",
				"-to", "2023-06-30", "-latest", "-json"})
			So(err, ShouldBeNil)
			So(flags.ConfigDir, ShouldEqual, "path/to/config")
			So(flags.Token, ShouldEqual, "tok")
			So(flags.LogLevel, ShouldEqual, logging.Warning)
			So(flags.NDVI, ShouldEqual, "42")
			So(flags.From, ShouldResemble, db.NewDate(2023, 3, 1))
			So(flags.To, ShouldResemble, db.NewDate(2023, 6, 30))
			So(flags.Latest, ShouldBeTrue)
			So(flags.JSON, ShouldBeTrue)
		})

		Convey("requires exactly one action", func() {
			_, err := parseFlags([]string{"-csv"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-farms", "-all-fields"})
			So(err, ShouldNotBeNil)
		})

		Convey("new fields require name and shape", func() {
			_, err := parseFlags([]string{"-add-field", "17", "-name", "Lote"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-add-field", "17", "-name", "Lote",
				"-shape", "POLYGON((0 0,1 0,1 1,0 0))"})
			So(err, ShouldBeNil)
		})

		Convey("one output format", func() {
			_, err := parseFlags([]string{"-farms", "-csv", "-json"})
			So(err, ShouldNotBeNil)
			_, err = parseFlags([]string{"-farms", "-csv", "-xlsx", "farms.xlsx"})
			So(err, ShouldNotBeNil)
		})
	})

	Convey("loadConfig", t, func() {
		Convey("token without config file", func() {
			c, err := loadConfig(&Flags{ConfigDir: filepath.Join(tmpdir, "none"), Token: "tok"})
			So(err, ShouldBeNil)
			So(c.Token, ShouldEqual, "tok")
		})

		Convey("config without token", func() {
			dir := filepath.Join(tmpdir, "notoken")
			So(os.MkdirAll(dir, 0755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "config.toml"),
				[]byte("dataset = \"data.csv\"\n"), 0644), ShouldBeNil)
			_, err := loadConfig(&Flags{ConfigDir: dir})
			So(err, ShouldNotBeNil)

			c, err := loadConfig(&Flags{ConfigDir: dir, Token: "tok"})
			So(err, ShouldBeNil)
			So(c.Token, ShouldEqual, "tok")
			So(c.Dataset, ShouldEqual, "data.csv")
		})

		Convey("invalid URL", func() {
			dir := filepath.Join(tmpdir, "badurl")
			So(os.MkdirAll(dir, 0755), ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, "config.toml"),
				[]byte("token = \"tok\"\nurl = \"not a url\"\n"), 0644), ShouldBeNil)
			_, err := loadConfig(&Flags{ConfigDir: dir})
			So(err, ShouldNotBeNil)
		})

		Convey("missing config file", func() {
			_, err := loadConfig(&Flags{ConfigDir: filepath.Join(tmpdir, "none")})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "does not exist")
		})
	})

	Convey("run works", t, func() {
		config := fmt.Sprintf(`token = "secret"
url = "%s/api/"
dataset = "%s"
`, server.URL, filepath.Join(tmpdir, "All_Harvest.csv"))
		So(os.WriteFile(filepath.Join(tmpdir, "config.toml"), []byte(config), 0644), ShouldBeNil)
		ctx := context.Background()

		runArgs := func(args ...string) (string, error) {
			flags, err := parseFlags(append([]string{"-config", tmpdir}, args...))
			if err != nil {
				return "", err
			}
			var buf bytes.Buffer
			err = run(ctx, flags, &buf)
			return buf.String(), err
		}

		Convey("farms", func() {
			out, err := runArgs("-farms", "-csv")
			So(err, ShouldBeNil)
			So("\n"+out, ShouldEqual, `
id_farm,name,bbox,N_fields
farm1,Farm One,"[0,0,10,10]",2
`)
		})

		Convey("fields to Excel", func() {
			path := filepath.Join(tmpdir, "fields.xlsx")
			out, err := runArgs("-all-fields", "-xlsx", path)
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "")
			f, err := excelize.OpenFile(path)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := f.GetRows(f.GetSheetName(0))
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0], ShouldResemble,
				[]string{"id_field", "name", "id_farm", "area", "polygon", "bbox"})
			So(rows[1][:4], ShouldResemble, []string{"A", "Lote A", "farm1", "12.5"})
		})

		Convey("fields as text", func() {
			out, err := runArgs("-fields", "farm1")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, "Lote A")
			So(out, ShouldContainSubstring, "id_field")
		})

		Convey("unknown farm", func() {
			_, err := runArgs("-fields", "farm2")
			So(err, ShouldNotBeNil)
		})

		Convey("located fields", func() {
			out, err := runArgs("-locate", "0.5, 0.5", "-json")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `"id_farm": "farm1"`)

			_, err = runArgs("-locate", "0.5")
			So(err, ShouldNotBeNil)
		})

		Convey("NDVI range", func() {
			out, err := runArgs("-ndvi", "42", "-from", "2023-03-01", "-csv")
			So(err, ShouldBeNil)
			So("\n"+out, ShouldEqual, `
date,ndvi_mean
2023-06-01,0.7
`)
		})

		Convey("latest NDVI", func() {
			out, err := runArgs("-ndvi", "42", "-latest", "-csv")
			So(err, ShouldBeNil)
			So("\n"+out, ShouldEqual, `
date,ndvi_mean
2023-01-01,0.5
`)
		})

		Convey("biomass without dataset prints nothing", func() {
			out, err := runArgs("-biomass")
			So(err, ShouldBeNil)
			So(out, ShouldEqual, "")
		})

		Convey("biomass with dataset", func() {
			So(os.WriteFile(filepath.Join(tmpdir, "All_Harvest.csv"),
				[]byte("Fecha,Soja\n2021-01-01,1.5\n2021-02-01,2.5\n"), 0644), ShouldBeNil)
			defer os.Remove(filepath.Join(tmpdir, "All_Harvest.csv"))
			out, err := runArgs("-biomass", "-csv")
			So(err, ShouldBeNil)
			So("\n"+out, ShouldEqual, `
Vegetation,Max_Biomass
Soja,2.5
`)
		})

		Convey("delete field", func() {
			out, err := runArgs("-delete-field", "55")
			So(err, ShouldBeNil)
			So("\n"+out, ShouldEqual, `
{
  "lote": "55",
  "status": "ok"
}
`)
		})

		Convey("add field", func() {
			out, err := runArgs("-add-field", "17", "-name", "Lote B",
				"-shape", "POLYGON((0 0,1 0,1 1,0 0))")
			So(err, ShouldBeNil)
			So("\n"+out, ShouldEqual, `
{
  "idcampo": "17",
  "nombre": "Lote B"
}
`)
		})

		Convey("shape is sent as given", func() {
			out, err := runArgs("-create-farm", "Farm", "-name", "Lote",
				"-shape", "MULTIPOLYGON(((0 0,1 0,1 1,0 0)))")
			So(err, ShouldBeNil)
			So(out, ShouldContainSubstring, `"nombre": "Lote"`)
		})

		Convey("rejected token", func() {
			_, err := runArgs("-farms", "-token", "wrong")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "authorization failed")
		})
	})
}
