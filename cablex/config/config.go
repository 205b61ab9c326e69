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

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cablex/bll"
	"github.com/cablex/cablex/cablex/cxutil"
	"github.com/cablex/cablex/cxact/cable"
)

type Config struct {
	LogLevel   string `yaml:"log_level"`
	Controller string `yaml:"controller"`
	StateFile  string `yaml:"state_file"`
	SesnCap    int    `yaml:"session_cap"`

	// Advertising interval bounds, in units of 0.625 ms.
	AdvItvlMin uint16 `yaml:"adv_itvl_min"`
	AdvItvlMax uint16 `yaml:"adv_itvl_max"`

	// Handshake payload handed to the engine once exporting starts.
	Qr string `yaml:"qr"`
}

func Default() Config {
	xc := bll.NewXportCfg()

	return Config{
		LogLevel:   "info",
		Controller: xc.CtlrName,
		StateFile:  "~/.cablex/state.cbor",
		SesnCap:    cable.SESN_CAP_DFLT,
		AdvItvlMin: xc.AdvItvlMin,
		AdvItvlMax: xc.AdvItvlMax,
	}
}

// Path of the config file in the user's home directory.
func CfgFilename() (string, error) {
	dir, err := homedir.Dir()
	if err != nil {
		return "", util.NewNewtError(err.Error())
	}

	return filepath.Join(dir, cxutil.ToolInfo.CfgFilename), nil
}

func (c *Config) Validate() error {
	if c.SesnCap <= 0 {
		return util.FmtNewtError("Invalid session_cap: %d", c.SesnCap)
	}

	if c.AdvItvlMin < 0x0020 || c.AdvItvlMax > 0x4000 ||
		c.AdvItvlMin > c.AdvItvlMax {

		return util.FmtNewtError("Invalid advertising interval: [0x%04x, "+
			"0x%04x]", c.AdvItvlMin, c.AdvItvlMax)
	}

	if c.StateFile == "" {
		return util.NewNewtError("state_file must not be empty")
	}

	return nil
}

// Expands a leading "~" in every path setting.
func (c *Config) expand() error {
	p, err := homedir.Expand(c.StateFile)
	if err != nil {
		return util.ChildNewtError(err)
	}
	c.StateFile = p

	return nil
}

// Load reads a YAML config file.  A missing file yields the defaults, and any
// setting absent from the file keeps its default value.
func Load(filename string) (Config, error) {
	c := Default()

	b, err := ioutil.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return c, util.ChildNewtError(err)
		}
		log.Debugf("No config file at %s; using defaults", filename)
	} else {
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, util.FmtNewtError("Error parsing %s: %s", filename,
				err.Error())
		}
	}

	if err := c.expand(); err != nil {
		return c, err
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// Loads the config file named on the command line, or the one in the home
// directory if none was.
func LoadDefault() (Config, error) {
	filename := cxutil.ConfigFile
	if filename == "" {
		var err error
		filename, err = CfgFilename()
		if err != nil {
			return Config{}, err
		}
	}

	return Load(filename)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func BuildXportCfg(c *Config) bll.XportCfg {
	xc := bll.NewXportCfg()
	xc.CtlrName = c.Controller
	xc.AdvItvlMin = c.AdvItvlMin
	xc.AdvItvlMax = c.AdvItvlMax

	return xc
}
