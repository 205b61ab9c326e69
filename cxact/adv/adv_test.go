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

package adv

import (
	"bytes"
	"testing"

	"github.com/cablex/cablex/cxact/bledefs"
)

func sequentialPayload() [DISCOVERY_PAYLOAD_LEN]byte {
	var p [DISCOVERY_PAYLOAD_LEN]byte
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestDiscoveryUuids(t *testing.T) {
	u1, u2 := DiscoveryUuids(sequentialPayload())

	if s := u1.U128.String(); s != "00010203-0405-0607-0809-0a0b0c0d0e0f" {
		t.Errorf("first UUID = %s", s)
	}

	msb, lsb := u2.U128.Halves()
	if msb>>32 != 0x10111213 {
		t.Errorf("second UUID top 32 bits = 0x%08x", msb>>32)
	}
	if msb&0xffff != 0x1000 {
		t.Errorf("second UUID marker = 0x%04x", msb&0xffff)
	}
	if lsb != 0x800000805f9b34fb {
		t.Errorf("second UUID low half = 0x%016x", lsb)
	}
	if s := u2.U128.String(); s != "10111213-0000-1000-8000-00805f9b34fb" {
		t.Errorf("second UUID = %s", s)
	}
}

func TestDiscoveryAdvert(t *testing.T) {
	a := DiscoveryAdvert(sequentialPayload())

	if a.Connectable() {
		t.Errorf("discovery advert is connectable")
	}
	if len(a.Uuids) != 3 {
		t.Fatalf("discovery advert has %d UUIDs", len(a.Uuids))
	}
	if a.Uuids[0].U16 != CableUuid16 {
		t.Errorf("first UUID is not the protocol family UUID")
	}

	b, err := a.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x03, BLE_AD_TYPE_UUIDS16_COMP, 0xe2, 0xfd,
		0x05, BLE_AD_TYPE_UUIDS32_COMP, 0x13, 0x12, 0x11, 0x10,
		0x11, BLE_AD_TYPE_UUIDS128_COMP,
		0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a, 0x09, 0x08,
		0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, 0x00,
	}
	if !bytes.Equal(b, want) {
		t.Errorf("advert bytes\n got %x\nwant %x", b, want)
	}
}

func TestConnectAdvert(t *testing.T) {
	var u [16]byte
	for i := range u {
		u[i] = byte(0xa0 + i)
	}

	a := ConnectAdvert(u)
	if !a.Connectable() {
		t.Errorf("connect advert is not connectable")
	}
	if len(a.Uuids) != 2 {
		t.Fatalf("connect advert has %d UUIDs", len(a.Uuids))
	}
	if a.Uuids[1].U128 != bledefs.BleUuid128(u) {
		t.Errorf("connect UUID = %s", a.Uuids[1].U128.String())
	}

	b, err := a.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 3+4+18 {
		t.Fatalf("connect advert is %d bytes", len(b))
	}
	if b[1] != BLE_AD_TYPE_FLAGS {
		t.Errorf("connect advert does not lead with flags")
	}
	if b[7] != 0x11 || b[8] != BLE_AD_TYPE_UUIDS128_COMP || b[9] != 0xaf {
		t.Errorf("unexpected 128-bit field: %x", b[7:])
	}
}

func TestAdvertTooLarge(t *testing.T) {
	a := Advert{ConnMode: bledefs.BLE_ADV_CONN_MODE_UND}
	for i := 0; i < 2; i++ {
		var u bledefs.BleUuid128
		u[0] = byte(i + 1)
		a.Uuids = append(a.Uuids, bledefs.BleUuid{U128: u})
	}

	if _, err := a.Bytes(); err == nil {
		t.Errorf("oversized advert encoded without error")
	}
}

func TestParseConnectUuid(t *testing.T) {
	want := [16]byte{0xf1, 0xd0, 0xff, 0xf1, 0xde, 0xaa, 0xec, 0xee,
		0xb4, 0x2f, 0xc9, 0xba, 0x7e, 0xd6, 0x23, 0xbb}

	for _, s := range []string{
		"f1d0fff1-deaa-ecee-b42f-c9ba7ed623bb",
		"urn:uuid:f1d0fff1-deaa-ecee-b42f-c9ba7ed623bb",
		"{f1d0fff1-deaa-ecee-b42f-c9ba7ed623bb}",
		"f1d0fff1deaaeceeb42fc9ba7ed623bb",
	} {
		got, err := ParseConnectUuid(s)
		if err != nil {
			t.Errorf("ParseConnectUuid(%s): %s", s, err.Error())
			continue
		}
		if got != want {
			t.Errorf("ParseConnectUuid(%s) = %x", s, got)
		}
	}

	if _, err := ParseConnectUuid("not-a-uuid"); err == nil {
		t.Errorf("invalid UUID parsed")
	}
}
