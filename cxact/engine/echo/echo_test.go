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

package echo

import (
	"bytes"
	"testing"

	"github.com/cablex/cablex/cxact/cxutil"
	"github.com/cablex/cablex/cxact/engine"
)

type recHost struct {
	notified [][][]byte
	states   [][]byte
	adverts  [][16]byte
	results  []engine.Result
}

func (h *recHost) SendNotification(client uint64, frags [][]byte) {
	h.notified = append(h.notified, frags)
}

func (h *recHost) SetPersistedState(state []byte) {
	h.states = append(h.states, state)
}

func (h *recHost) SendBleAdvert(uuid [16]byte) {
	h.adverts = append(h.adverts, uuid)
}

func (h *recHost) Complete(r engine.Result) {
	h.results = append(h.results, r)
}

func TestStartSeedsState(t *testing.T) {
	h := &recHost{}
	e, err := NewLauncher().Start(h, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(h.states) != 1 || len(h.states[0]) != STATE_LEN {
		t.Fatalf("expected one %d-byte persisted state, got %v",
			STATE_LEN, h.states)
	}
	if !bytes.Equal(e.(*Engine).State(), h.states[0]) {
		t.Errorf("engine state differs from persisted state")
	}
}

func TestStartResumesState(t *testing.T) {
	h := &recHost{}
	prev := []byte{1, 2, 3}
	e, err := NewLauncher().Start(h, prev)
	if err != nil {
		t.Fatal(err)
	}

	if len(h.states) != 0 {
		t.Errorf("resumed engine persisted new state")
	}
	if !bytes.Equal(e.(*Engine).State(), prev) {
		t.Errorf("engine did not resume from given state")
	}
}

func TestWriteFragments(t *testing.T) {
	e, _ := NewLauncher().Start(&recHost{}, []byte{0})

	data := []byte("0123456789abcdefghij")
	frags, err := e.Write(1, 6, data)
	if err != nil {
		t.Fatal(err)
	}

	if len(frags) != 4 {
		t.Fatalf("got %d fragments, want 4", len(frags))
	}
	if !bytes.Equal(bytes.Join(frags, nil), data) {
		t.Errorf("fragments do not reassemble to input")
	}
	for i, f := range frags[:3] {
		if len(f) != 6 {
			t.Errorf("fragment %d is %d bytes", i, len(f))
		}
	}

	if _, err := e.Write(1, 6, nil); !cxutil.IsEngineReject(err) {
		t.Errorf("empty write accepted")
	}

	e.Stop()
	if _, err := e.Write(1, 6, data); !cxutil.IsEngineReject(err) {
		t.Errorf("write accepted after stop")
	}
}

func TestQrScanned(t *testing.T) {
	h := &recHost{}
	e, _ := NewLauncher().Start(h, []byte{0})

	e.OnQrScanned("https://example.com")
	if len(h.adverts) != 0 {
		t.Errorf("advert sent for non-FIDO value")
	}

	e.OnQrScanned("FIDO:/1234567890")
	e.OnQrScanned("FIDO:/1234567890")
	if len(h.adverts) != 2 {
		t.Fatalf("got %d adverts, want 2", len(h.adverts))
	}
	if h.adverts[0] != h.adverts[1] {
		t.Errorf("advert UUID not deterministic")
	}

	if len(h.results) != 3 || h.results[0].Status != RESULT_STATUS_BAD ||
		h.results[1].Status != RESULT_STATUS_OK {

		t.Errorf("unexpected results: %+v", h.results)
	}
}
