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
	lru "github.com/hashicorp/golang-lru"

	. "github.com/cablex/cablex/cxact/bledefs"
)

const (
	// Fragment size used for a client that has not negotiated an MTU.
	MTU_DFLT = BLE_ATT_MTU_DFLT - BLE_ATT_HDR_LEN

	// Smallest fragment size ever handed to the engine.
	MTU_MIN = 6

	SESN_CAP_DFLT = 64
)

// SesnTable tracks per-client state: the negotiated fragment size and any
// fragments still waiting to be notified.  Clients are keyed by the 48-bit
// integer form of their address.
//
// MTU entries live in an LRU so that a long-running export that sees many
// short-lived peers does not grow without bound.  Pending fragments are never
// evicted; they are removed only by the pump or by Purge.
type SesnTable struct {
	mtus    *lru.Cache
	pending map[uint64][][]byte
}

func NewSesnTable(capacity int) (*SesnTable, error) {
	if capacity <= 0 {
		capacity = SESN_CAP_DFLT
	}

	mtus, err := lru.New(capacity)
	if err != nil {
		return nil, err
	}

	return &SesnTable{
		mtus:    mtus,
		pending: map[uint64][][]byte{},
	}, nil
}

// OnMtuNegotiated records the ATT MTU reported by the stack for a client.  The
// stored fragment size excludes the ATT header and is never below MTU_MIN.
func (st *SesnTable) OnMtuNegotiated(addr BleAddr, rawMtu int) {
	mtu := rawMtu - BLE_ATT_HDR_LEN
	if mtu < MTU_MIN {
		mtu = MTU_MIN
	}

	st.mtus.Add(AddrToId(addr), mtu)
}

func (st *SesnTable) MtuFor(addr BleAddr) int {
	if v, ok := st.mtus.Get(AddrToId(addr)); ok {
		return v.(int)
	}

	return MTU_DFLT
}

func (st *SesnTable) pendingFor(addr BleAddr) ([][]byte, bool) {
	frags, ok := st.pending[AddrToId(addr)]
	return frags, ok
}

func (st *SesnTable) setPending(addr BleAddr, frags [][]byte) {
	st.pending[AddrToId(addr)] = frags
}

func (st *SesnTable) clearPending(addr BleAddr) {
	delete(st.pending, AddrToId(addr))
}

// Purge forgets everything known about a client.
func (st *SesnTable) Purge(addr BleAddr) {
	st.mtus.Remove(AddrToId(addr))
	st.clearPending(addr)
}

func (st *SesnTable) Clear() {
	st.mtus.Purge()
	st.pending = map[uint64][][]byte{}
}

// Number of clients with a recorded MTU.
func (st *SesnTable) NumKnown() int {
	return st.mtus.Len()
}

// Number of clients with fragments waiting to be sent.
func (st *SesnTable) NumSending() int {
	return len(st.pending)
}
