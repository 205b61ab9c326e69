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
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cablex/cxutil"
	"github.com/cablex/cablex/cxact/adv"
)

func printAdvert(a adv.Advert) error {
	b, err := a.Bytes()
	if err != nil {
		return util.ChildNewtError(err)
	}

	fmt.Printf("kind:        %s\n", adv.KindToString(a.Kind))
	fmt.Printf("connectable: %v\n", a.Connectable())
	for i, s := range a.UuidStrings() {
		fmt.Printf("uuid[%d]:     %s\n", i, s)
	}
	fmt.Printf("ad (%d):     %s\n", len(b), hex.EncodeToString(b))

	return nil
}

func uuidsRunCmd(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		cxUsage(cmd, nil)
	}

	var a adv.Advert
	if connect, _ := cmd.Flags().GetBool("connect"); connect {
		u, err := adv.ParseConnectUuid(args[0])
		if err != nil {
			cxUsage(cmd, util.ChildNewtError(err))
		}
		a = adv.ConnectAdvert(u)
	} else {
		payload, err := parseDiscoveryPayload(args[0])
		if err != nil {
			cxUsage(cmd, err)
		}
		a = adv.DiscoveryAdvert(payload)
	}

	if err := printAdvert(a); err != nil {
		cxUsage(nil, err)
	}
}

func uuidsCmd() *cobra.Command {
	uuidsCmd := &cobra.Command{
		Use:   "uuids <payload>",
		Short: "Show the advertisement derived from a payload",
		Example: "  " + cxutil.ToolInfo.ExeName +
			" uuids 000102030405060708090a0b0c0d0e0f10111213\n" +
			"  " + cxutil.ToolInfo.ExeName +
			" uuids --connect 7d1a0c4e-8f2b-4c3e-9a15-0b6e2f3d4c5a",
		Run: uuidsRunCmd,
	}

	uuidsCmd.Flags().Bool("connect", false,
		"Treat the argument as a connect UUID")

	return uuidsCmd
}
