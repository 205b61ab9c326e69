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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cablex/cxutil"
	cxactutil "github.com/cablex/cablex/cxact/cxutil"
)

var CablexLogLevel log.Level

func Commands() *cobra.Command {
	logLevelStr := ""
	cxCmd := &cobra.Command{
		Use:   cxutil.ToolInfo.ExeName,
		Short: cxutil.ToolInfo.ShortName + " exports a FIDO authenticator over BLE",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			CablexLogLevel, err = log.ParseLevel(logLevelStr)
			if err != nil {
				cxUsage(nil, util.ChildNewtError(err))
			}

			err = util.Init(CablexLogLevel, "", util.VERBOSITY_DEFAULT)
			if err != nil {
				cxUsage(nil, err)
			}
			cxactutil.SetLogLevel(CablexLogLevel)

			// Set cbgo log level if we're using macOS.
			OSSpecificInit()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	cxCmd.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l", "info",
		"log level to use")

	cxCmd.PersistentFlags().StringVarP(&cxutil.ConfigFile, "config", "f", "",
		"config file to use instead of ~/"+cxutil.ToolInfo.CfgFilename)

	cxCmd.PersistentFlags().StringVar(&cxutil.ConnString, "connstring", "",
		"Connection key-value pairs that override the config file")

	cxCmd.PersistentFlags().StringVar(&cxutil.StateFile, "state", "",
		"Engine state file; overrides the config file")

	versCmd := &cobra.Command{
		Use:     "version",
		Short:   "Display the " + cxutil.ToolInfo.ShortName + " version number",
		Example: "  " + cxutil.ToolInfo.ExeName + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n",
				cxutil.ToolInfo.LongName,
				cxutil.ToolInfo.VersionString)
		},
	}
	cxCmd.AddCommand(versCmd)

	cxCmd.AddCommand(exportCmd())
	cxCmd.AddCommand(uuidsCmd())
	cxCmd.AddCommand(stateCmd())
	cxCmd.AddCommand(configCmd())

	return cxCmd
}
