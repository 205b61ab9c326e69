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
	"bytes"
	"fmt"
	"testing"

	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/cxutil"
)

type sentNotify struct {
	addr BleAddr
	val  []byte
}

type notifyRec struct {
	sent []sentNotify
	fail bool
}

func (r *notifyRec) notify(addr BleAddr, val []byte) error {
	if r.fail {
		return fmt.Errorf("link down")
	}
	r.sent = append(r.sent, sentNotify{addr, val})
	return nil
}

func newTestPump(t *testing.T) (*Pump, *notifyRec) {
	st, err := NewSesnTable(0)
	if err != nil {
		t.Fatal(err)
	}

	rec := &notifyRec{}
	return NewPump(st, rec.notify), rec
}

var testFrags = [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}

func TestPumpOrdering(t *testing.T) {
	p, rec := newTestPump(t)
	addr := testAddr(t, "01:02:03:04:05:06")

	if err := p.EnqueueAndStart(addr, testFrags); err != nil {
		t.Fatal(err)
	}
	if !p.Sending(addr) {
		t.Fatalf("client not sending after multi-fragment enqueue")
	}

	for i := 0; i < 3; i++ {
		p.OnDeliveryConfirmed(addr, true)
	}

	if len(rec.sent) != 3 {
		t.Fatalf("sent %d notifications, want 3", len(rec.sent))
	}
	for i, n := range rec.sent {
		if !bytes.Equal(n.val, testFrags[i]) {
			t.Errorf("notification %d = %q, want %q", i, n.val, testFrags[i])
		}
		if n.addr != addr {
			t.Errorf("notification %d sent to %s", i, n.addr.String())
		}
	}
	if p.Sending(addr) {
		t.Errorf("client still sending after last fragment")
	}
}

func TestPumpSingleFragmentIdle(t *testing.T) {
	p, rec := newTestPump(t)
	addr := testAddr(t, "01:02:03:04:05:06")

	if err := p.EnqueueAndStart(addr, testFrags[:1]); err != nil {
		t.Fatal(err)
	}
	if p.Sending(addr) {
		t.Errorf("single fragment left a pending entry")
	}

	p.OnDeliveryConfirmed(addr, true)
	if len(rec.sent) != 1 {
		t.Errorf("sent %d notifications, want 1", len(rec.sent))
	}
}

func TestPumpFailureDiscardsTail(t *testing.T) {
	p, rec := newTestPump(t)
	addr := testAddr(t, "01:02:03:04:05:06")

	if err := p.EnqueueAndStart(addr, testFrags); err != nil {
		t.Fatal(err)
	}
	p.OnDeliveryConfirmed(addr, false)
	p.OnDeliveryConfirmed(addr, true)
	p.OnDeliveryConfirmed(addr, true)

	if len(rec.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(rec.sent))
	}
	if p.Sending(addr) {
		t.Errorf("client still sending after failure")
	}
}

func TestPumpClientsIndependent(t *testing.T) {
	p, rec := newTestPump(t)
	a := testAddr(t, "01:02:03:04:05:06")
	b := testAddr(t, "06:05:04:03:02:01")

	p.EnqueueAndStart(a, testFrags)
	p.EnqueueAndStart(b, [][]byte{[]byte("b1"), []byte("b2")})
	p.OnDeliveryConfirmed(a, false)
	p.OnDeliveryConfirmed(b, true)

	if len(rec.sent) != 3 {
		t.Fatalf("sent %d notifications, want 3", len(rec.sent))
	}
	last := rec.sent[2]
	if last.addr != b || string(last.val) != "b2" {
		t.Errorf("last notification %s %q", last.addr.String(), last.val)
	}
}

func TestPumpBusy(t *testing.T) {
	p, rec := newTestPump(t)
	addr := testAddr(t, "01:02:03:04:05:06")

	p.EnqueueAndStart(addr, testFrags)
	err := p.EnqueueAndStart(addr, testFrags)
	if !cxutil.IsPumpBusy(err) {
		t.Fatalf("second enqueue returned %v", err)
	}
	if len(rec.sent) != 1 {
		t.Errorf("busy enqueue sent a notification")
	}
}

func TestPumpNotifyError(t *testing.T) {
	p, rec := newTestPump(t)
	addr := testAddr(t, "01:02:03:04:05:06")
	rec.fail = true

	err := p.EnqueueAndStart(addr, testFrags)
	if !cxutil.IsNotify(err) {
		t.Fatalf("enqueue returned %v", err)
	}
	if p.Sending(addr) {
		t.Errorf("failed first notification left a pending entry")
	}
}

func TestPumpCancel(t *testing.T) {
	p, rec := newTestPump(t)
	addr := testAddr(t, "01:02:03:04:05:06")

	p.EnqueueAndStart(addr, testFrags)
	p.Cancel(addr)
	p.OnDeliveryConfirmed(addr, true)

	if len(rec.sent) != 1 {
		t.Errorf("sent %d notifications after cancel, want 1", len(rec.sent))
	}
}
