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
	"gopkg.in/abiosoft/ishell.v2"

	"github.com/cablex/cablex/cxact/adv"
	"github.com/cablex/cablex/cxact/cable"
)

func qrCmd(t *cable.Transport) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Println("Usage: qr <value>")
			return
		}

		t.OnQrScanned(c.Args[0])
	}
}

func discoverCmd(t *cable.Transport) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Println("Usage: discover <20-byte hex payload>")
			return
		}

		payload, err := parseDiscoveryPayload(c.Args[0])
		if err != nil {
			c.Println("Error:", err)
			return
		}

		t.AdvertiseDiscovery(payload)
	}
}

func connectCmd(t *cable.Transport) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if len(c.Args) != 1 {
			c.Println("Usage: connect <uuid>")
			return
		}

		u, err := adv.ParseConnectUuid(c.Args[0])
		if err != nil {
			c.Println("Error:", err)
			return
		}

		t.AdvertiseConnect(u)
	}
}

func statusCmd(t *cable.Transport) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s, err := t.Status()
		if err != nil {
			c.Println("Error:", err)
			return
		}

		bound := s.Bound
		if bound == "" {
			bound = "none"
		}
		advert := s.Advert
		if advert == "" {
			advert = "none"
		}

		c.Println("state:  ", s.State.String())
		c.Println("bound:  ", bound)
		c.Println("advert: ", advert)
		c.Println("clients:", s.Known, "known,", s.Sending, "sending")
		c.Println("backlog:", s.Backlog)
	}
}

func startInteractive(t *cable.Transport) {
	// create new shell.
	// by default, new shell includes 'exit', 'help' and 'clear' commands.
	shell := ishell.New()
	shell.SetPrompt("> ")

	shell.Println()
	shell.Println(" Export console; service", cable.FidoSvcUuid.String())
	shell.Println()

	shell.AddCmd(&ishell.Cmd{
		Name: "qr",
		Help: "Hand a scanned handshake payload to the engine: qr <value>",
		Func: qrCmd(t),
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "discover",
		Help: "Start a discovery advert: discover <20-byte hex payload>",
		Func: discoverCmd(t),
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "connect",
		Help: "Start a connect advert: connect <uuid>",
		Func: connectCmd(t),
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stopadv",
		Help: "Stop advertising",
		Func: func(c *ishell.Context) {
			t.StopAdvertising()
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "status",
		Help: "Show transport status",
		Func: statusCmd(t),
	})

	shell.Run()
	shell.Close()
}
