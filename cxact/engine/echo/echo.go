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

// Package echo is a stand-in protocol engine for bench use.  It reflects
// every inbound chunk back to its sender, split to the link's MTU.
package echo

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cablex/cablex/cxact/cxutil"
	"github.com/cablex/cablex/cxact/engine"
)

const QR_PREFIX = "FIDO:/"

const STATE_LEN = 32

const (
	RESULT_STATUS_OK  = 0
	RESULT_STATUS_BAD = 1
)

type Launcher struct{}

func NewLauncher() *Launcher {
	return &Launcher{}
}

func (l *Launcher) Start(host engine.Host, state []byte) (engine.Engine, error) {
	if state == nil {
		state = make([]byte, STATE_LEN)
		if _, err := rand.Read(state); err != nil {
			return nil, fmt.Errorf("failed to generate engine state: %s",
				err.Error())
		}

		log.Debugf("echo engine: generated fresh state")
		host.SetPersistedState(state)
	}

	return &Engine{
		host:  host,
		state: state,
	}, nil
}

type Engine struct {
	host    engine.Host
	state   []byte
	stopped bool
}

func (e *Engine) Write(client uint64, mtu uint16, data []byte) (
	[][]byte, error) {

	if e.stopped {
		return nil, cxutil.NewEngineRejectError("echo engine stopped")
	}
	if len(data) == 0 {
		return nil, cxutil.NewEngineRejectError(
			fmt.Sprintf("empty write from client 0x%012x", client))
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	frags := cxutil.Fragment(cp, int(mtu))
	log.Debugf("echo engine: client=0x%012x mtu=%d len=%d frags=%d",
		client, mtu, len(data), len(frags))

	return frags, nil
}

// OnQrScanned advertises a UUID derived from the scanned value.
func (e *Engine) OnQrScanned(value string) {
	if !strings.HasPrefix(strings.ToUpper(value), QR_PREFIX) {
		log.Debugf("echo engine: ignoring QR value without %s prefix",
			QR_PREFIX)
		e.host.Complete(engine.Result{
			Op:     "qr",
			Status: RESULT_STATUS_BAD,
		})
		return
	}

	sum := sha256.Sum256([]byte(value))

	var u [16]byte
	copy(u[:], sum[:16])
	e.host.SendBleAdvert(u)

	e.host.Complete(engine.Result{
		Op:      "qr",
		Status:  RESULT_STATUS_OK,
		Payload: u[:],
	})
}

func (e *Engine) Stop() {
	e.stopped = true
}

// State returns the state the engine was started with.
func (e *Engine) State() []byte {
	return e.state
}
