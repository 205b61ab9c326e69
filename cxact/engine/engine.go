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

// Package engine defines the boundary between the BLE transport and the
// protocol engine that interprets the wrapped authenticator messages.  The
// transport never looks inside the payloads it moves.
package engine

// Opaque outcome of a higher-level credential operation.  The transport
// forwards it to its listener untouched.
type Result struct {
	Op      string
	Status  int
	Payload []byte
}

// Host is implemented by the transport.  An engine may call any of these from
// any goroutine, including from inside Engine.Write.
type Host interface {
	// Queues fragments for delivery to a client via notification.
	SendNotification(client uint64, frags [][]byte)

	// Hands over new state to be persisted verbatim.
	SetPersistedState(state []byte)

	// Replaces the current advertisement with a connectable one carrying
	// the given UUID.
	SendBleAdvert(uuid [16]byte)

	// Reports the outcome of a credential operation.
	Complete(r Result)
}

// Launcher begins protocol sessions.
type Launcher interface {
	// Starts a session, optionally resuming from previously persisted state
	// (nil if there is none).
	Start(host Host, state []byte) (Engine, error)
}

// Engine is one running protocol session.  The transport guarantees that
// calls into an Engine never overlap.
type Engine interface {
	// Feeds one inbound chunk from a client.  A non-nil error means the
	// engine rejected it.  Otherwise the returned fragments, possibly none,
	// are sent back to the client in order.
	Write(client uint64, mtu uint16, data []byte) ([][]byte, error)

	// Delivers a scanned handshake payload.
	OnQrScanned(value string)

	// Tears down the session.
	Stop()
}
