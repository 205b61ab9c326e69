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
	log "github.com/sirupsen/logrus"

	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/cxutil"
)

// Sends a single notification on the status characteristic.
type notifyFn func(addr BleAddr, val []byte) error

// Pump delivers an engine reply to a client one notification at a time.  The
// next fragment is sent only after the stack confirms the previous one.  A
// client with fragments stored in the session table is "sending"; otherwise it
// is idle.
type Pump struct {
	st     *SesnTable
	notify notifyFn
}

func NewPump(st *SesnTable, notify notifyFn) *Pump {
	return &Pump{
		st:     st,
		notify: notify,
	}
}

func (p *Pump) Sending(addr BleAddr) bool {
	_, ok := p.st.pendingFor(addr)
	return ok
}

// EnqueueAndStart sends the first fragment immediately and stores the rest.
// The caller must not start a new message for a client that is still
// sending.
func (p *Pump) EnqueueAndStart(addr BleAddr, frags [][]byte) error {
	if len(frags) == 0 {
		return nil
	}

	if p.Sending(addr) {
		cxutil.Assert(false)
		return cxutil.FmtPumpBusyError(AddrToId(addr),
			"client %s already has a message in flight", addr.String())
	}

	if len(frags) > 1 {
		tail := make([][]byte, len(frags)-1)
		copy(tail, frags[1:])
		p.st.setPending(addr, tail)
	}

	if err := p.notify(addr, frags[0]); err != nil {
		p.st.clearPending(addr)
		return cxutil.FmtNotifyError("failed to notify %s: %s",
			addr.String(), err.Error())
	}

	return nil
}

// OnDeliveryConfirmed is called once per notification when the stack reports
// its outcome.  A failure abandons whatever remains of the message.
func (p *Pump) OnDeliveryConfirmed(addr BleAddr, success bool) {
	if !success {
		if p.Sending(addr) {
			log.Debugf("notification to %s failed; discarding remaining "+
				"fragments", addr.String())
		}
		p.st.clearPending(addr)
		return
	}

	frags, ok := p.st.pendingFor(addr)
	if !ok {
		return
	}

	head := frags[0]
	if len(frags) == 1 {
		p.st.clearPending(addr)
	} else {
		p.st.setPending(addr, frags[1:])
	}

	if err := p.notify(addr, head); err != nil {
		log.Debugf("failed to notify %s: %s; discarding remaining fragments",
			addr.String(), err.Error())
		p.st.clearPending(addr)
	}
}

// Cancel drops any fragments still queued for a client.
func (p *Pump) Cancel(addr BleAddr) {
	p.st.clearPending(addr)
}
