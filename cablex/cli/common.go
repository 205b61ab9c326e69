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

package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cablex/bll"
	"github.com/cablex/cablex/cablex/config"
	"github.com/cablex/cablex/cablex/cxutil"
	"github.com/cablex/cablex/cxact/cable"
)

var globalCfg *config.Config
var globalXport *bll.BllXport
var globalTransport *cable.Transport

var onExit func()

func CxSetOnExit(f func()) {
	onExit = f
}

func cxUsage(cmd *cobra.Command, err error) {
	if err != nil {
		if nerr, ok := err.(*util.NewtError); ok {
			log.Debugf("%s", nerr.StackTrace)
			fmt.Fprintf(os.Stderr, "Error: %s\n", nerr.Text)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		}
	}

	if cmd != nil {
		fmt.Printf("\n")
		fmt.Printf("%s - ", cmd.Name())
		cmd.Help()
	}

	if onExit != nil {
		onExit()
	}
	os.Exit(1)
}

// GetConfig loads the config file and applies command line overrides.
func GetConfig() (*config.Config, error) {
	if globalCfg != nil {
		return globalCfg, nil
	}

	c, err := config.LoadDefault()
	if err != nil {
		return nil, err
	}

	if err := config.ApplyConnString(&c, cxutil.ConnString); err != nil {
		return nil, err
	}

	if cxutil.StateFile != "" {
		c.StateFile = cxutil.StateFile
	}

	globalCfg = &c
	return globalCfg, nil
}

func GetStateStore() (*config.StateStore, error) {
	c, err := GetConfig()
	if err != nil {
		return nil, err
	}

	return config.NewStateStore(c.StateFile), nil
}

func GetXport() (*bll.BllXport, error) {
	if globalXport != nil {
		return globalXport, nil
	}

	c, err := GetConfig()
	if err != nil {
		return nil, err
	}

	x := bll.NewBllXport(config.BuildXportCfg(c))
	if err := x.Start(); err != nil {
		return nil, util.ChildNewtError(err)
	}

	globalXport = x
	return globalXport, nil
}

func GetXportIfOpen() (*bll.BllXport, error) {
	if globalXport == nil {
		return nil, fmt.Errorf("xport not initialized")
	}

	return globalXport, nil
}

func GetTransportIfOpen() (*cable.Transport, error) {
	if globalTransport == nil {
		return nil, fmt.Errorf("transport not initialized")
	}

	return globalTransport, nil
}
