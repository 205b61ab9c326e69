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

	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cablex/cxutil"
)

func stateShowCmd(cmd *cobra.Command, args []string) {
	ss, err := GetStateStore()
	if err != nil {
		cxUsage(nil, err)
	}

	info, ok, err := ss.Info()
	if err != nil {
		cxUsage(nil, util.ChildNewtError(err))
	}

	fmt.Printf("file:    %s\n", ss.Path())
	if !ok {
		fmt.Printf("(no state saved)\n")
		return
	}

	fmt.Printf("version: %d\n", info.Version)
	fmt.Printf("length:  %d\n", info.Len)
	fmt.Printf("saved:   %s\n", info.Saved.Format("2006-01-02 15:04:05"))
}

func stateClearCmd(cmd *cobra.Command, args []string) {
	ss, err := GetStateStore()
	if err != nil {
		cxUsage(nil, err)
	}

	if err := ss.Clear(); err != nil {
		cxUsage(nil, util.ChildNewtError(err))
	}

	fmt.Printf("Cleared %s\n", ss.Path())
}

func stateCmd() *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Manage persisted engine state",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	stateCmd.AddCommand(&cobra.Command{
		Use:     "show",
		Short:   "Describe the persisted engine state",
		Example: "  " + cxutil.ToolInfo.ExeName + " state show",
		Run:     stateShowCmd,
	})

	stateCmd.AddCommand(&cobra.Command{
		Use:     "clear",
		Short:   "Delete the persisted engine state",
		Example: "  " + cxutil.ToolInfo.ExeName + " state clear",
		Run:     stateClearCmd,
	})

	return stateCmd
}
