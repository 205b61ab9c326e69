/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
)

func tempDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "cablex-config")
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func writeFile(t *testing.T, path string, s string) {
	if err := ioutil.WriteFile(path, []byte(s), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	c, err := Load(filepath.Join(dir, "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	d := Default()
	if c.SesnCap != d.SesnCap || c.Controller != d.Controller ||
		c.AdvItvlMin != d.AdvItvlMin || c.LogLevel != d.LogLevel {

		t.Errorf("missing file gave %+v, want defaults %+v", c, d)
	}
}

func TestLoadPartial(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
controller: hci1
session_cap: 8
state_file: ~/cablex-test-state
qr: "FIDO:/1234"
`)

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if c.Controller != "hci1" || c.SesnCap != 8 || c.Qr != "FIDO:/1234" {
		t.Errorf("loaded %+v", c)
	}
	if c.AdvItvlMax != Default().AdvItvlMax {
		t.Errorf("unset field lost its default: %d", c.AdvItvlMax)
	}

	want, err := homedir.Expand("~/cablex-test-state")
	if err != nil {
		t.Fatal(err)
	}
	if c.StateFile != want {
		t.Errorf("state_file = %s, want %s", c.StateFile, want)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	tests := []string{
		"session_cap: [1, 2",
		"session_cap: 0",
		"adv_itvl_min: 500\nadv_itvl_max: 100",
		"adv_itvl_min: 1",
	}

	for i, s := range tests {
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, s)

		if _, err := Load(path); err == nil {
			t.Errorf("test %d: invalid config accepted: %q", i, s)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	dir := tempDir(t)
	defer os.RemoveAll(dir)

	c := Default()
	c.StateFile = filepath.Join(dir, "state")
	c.Qr = "FIDO:/abc"

	b, err := c.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, string(b))

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != c {
		t.Errorf("round trip gave %+v, want %+v", got, c)
	}
}
