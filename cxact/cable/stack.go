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

package cable

import (
	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/adv"
	"github.com/cablex/cablex/cxact/engine"
)

// GattServer is the peripheral side of the host BLE stack.  The transport
// registers its service through Open and receives accesses, MTU changes,
// connection changes and notification outcomes through its On* methods.
type GattServer interface {
	// Registers the service and starts accepting accesses to it.
	Open(svc BleSvc) error

	// Sends one notification.  The outcome must later be reported via
	// Transport.OnNotifySent unless an error is returned here.
	Notify(addr BleAddr, chr BleUuid, val []byte) error

	Close() error
}

type Advertiser interface {
	// Replaces any running advertisement.
	Advertise(a adv.Advert) error
	StopAdvertising() error
}

// StateSaver persists opaque engine state between runs.
type StateSaver interface {
	SaveState(state []byte) error
}

// Listener receives transport events that matter to the embedding
// application.  All methods run on the transport's task queue and must not
// call back into blocking Transport methods.
type Listener interface {
	OnPeerConnected(addr BleAddr)
	OnPeerDisconnected(addr BleAddr)
	OnComplete(r engine.Result)
}

type nullListener struct{}

func (nullListener) OnPeerConnected(addr BleAddr)        {}
func (nullListener) OnPeerDisconnected(addr BleAddr) {}
func (nullListener) OnComplete(r engine.Result)      {}
