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
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cablex/cxutil"
	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/adv"
	"github.com/cablex/cablex/cxact/cable"
	"github.com/cablex/cablex/cxact/engine"
	"github.com/cablex/cablex/cxact/engine/echo"
)

var exportDiscover string
var exportConnect string

// Prints transport events to stdout.
type printListener struct{}

func (printListener) OnPeerConnected(addr BleAddr) {
	fmt.Printf("peer connected: %s\n", addr.String())
}

func (printListener) OnPeerDisconnected(addr BleAddr) {
	fmt.Printf("peer disconnected: %s\n", addr.String())
}

func (printListener) OnComplete(r engine.Result) {
	fmt.Printf("completed: op=%s status=%d payload=%s\n",
		r.Op, r.Status, hex.EncodeToString(r.Payload))
}

func parseDiscoveryPayload(s string) ([adv.DISCOVERY_PAYLOAD_LEN]byte, error) {
	var payload [adv.DISCOVERY_PAYLOAD_LEN]byte

	b, err := hex.DecodeString(strings.Replace(s, ":", "", -1))
	if err != nil {
		return payload, util.FmtNewtError("Invalid discovery payload: %s",
			err.Error())
	}
	if len(b) != adv.DISCOVERY_PAYLOAD_LEN {
		return payload, util.FmtNewtError("Discovery payload must be %d "+
			"bytes; have %d", adv.DISCOVERY_PAYLOAD_LEN, len(b))
	}

	copy(payload[:], b)
	return payload, nil
}

// Starts the transport and everything beneath it.
func startTransport() (*cable.Transport, error) {
	c, err := GetConfig()
	if err != nil {
		return nil, err
	}

	ss, err := GetStateStore()
	if err != nil {
		return nil, err
	}

	state, err := ss.Load()
	if err != nil {
		return nil, util.ChildNewtError(err)
	}
	if state == nil {
		log.Infof("No engine state in %s; starting fresh", ss.Path())
	}

	x, err := GetXport()
	if err != nil {
		return nil, err
	}

	srv, err := x.BuildServer()
	if err != nil {
		return nil, util.ChildNewtError(err)
	}

	advertiser, err := x.BuildAdvertiser()
	if err != nil {
		return nil, util.ChildNewtError(err)
	}

	xc := cable.NewXportCfg()
	xc.Server = srv
	xc.Advertiser = advertiser
	xc.Launcher = echo.NewLauncher()
	xc.Saver = ss
	xc.Listener = printListener{}
	xc.SesnCap = c.SesnCap

	t, err := cable.NewTransport(xc)
	if err != nil {
		return nil, util.ChildNewtError(err)
	}
	srv.SetHandler(t)
	globalTransport = t

	if err := t.Start(state); err != nil {
		return nil, util.ChildNewtError(err)
	}

	return t, nil
}

func exportRunCmd(cmd *cobra.Command, args []string) {
	var payload [adv.DISCOVERY_PAYLOAD_LEN]byte
	if exportDiscover != "" {
		var err error
		payload, err = parseDiscoveryPayload(exportDiscover)
		if err != nil {
			cxUsage(cmd, err)
		}
	}

	var connUuid [16]byte
	if exportConnect != "" {
		var err error
		connUuid, err = adv.ParseConnectUuid(exportConnect)
		if err != nil {
			cxUsage(cmd, util.ChildNewtError(err))
		}
	}

	c, err := GetConfig()
	if err != nil {
		cxUsage(nil, err)
	}

	t, err := startTransport()
	if err != nil {
		cxUsage(nil, err)
	}

	fmt.Printf("Exporting service %s on controller \"%s\"\n",
		cable.FidoSvcUuid.String(), c.Controller)

	if exportDiscover != "" {
		t.AdvertiseDiscovery(payload)
	}
	if exportConnect != "" {
		t.AdvertiseConnect(connUuid)
	}

	qr := c.Qr
	if cxutil.QrValue != "" {
		qr = cxutil.QrValue
	}
	if qr != "" {
		t.OnQrScanned(qr)
	}

	if cxutil.Interactive {
		startInteractive(t)
		if onExit != nil {
			onExit()
		}
		return
	}

	// Run until interrupted.
	select {}
}

func exportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export an authenticator over BLE until interrupted",
		Example: "  " + cxutil.ToolInfo.ExeName + " export --qr FIDO:/0123\n" +
			"  " + cxutil.ToolInfo.ExeName + " export --discover " +
			"000102030405060708090a0b0c0d0e0f10111213 -i",
		Run: exportRunCmd,
	}

	exportCmd.Flags().StringVar(&cxutil.QrValue, "qr", "",
		"Handshake payload to hand to the engine once exporting; "+
			"overrides the config file")

	exportCmd.Flags().StringVar(&exportDiscover, "discover", "",
		"Advertise a discovery advert for this 20-byte hex payload")

	exportCmd.Flags().StringVar(&exportConnect, "connect", "",
		"Advertise a connect advert for this UUID")

	exportCmd.Flags().BoolVarP(&cxutil.Interactive, "interactive", "i",
		false, "Run an interactive console while exporting")

	return exportCmd
}
