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

package bledefs

import (
	"math/rand"
	"testing"
)

func TestAddrIdRoundTrip(t *testing.T) {
	addrs := []string{
		"00:00:00:00:00:00",
		"ff:ff:ff:ff:ff:ff",
		"01:23:45:67:89:ab",
		"AA:BB:CC:DD:EE:FF",
	}

	for _, s := range addrs {
		ba, err := ParseBleAddr(s)
		if err != nil {
			t.Fatalf("ParseBleAddr(%s): %s", s, err.Error())
		}

		id := AddrToId(ba)
		if got := IdToAddr(id); got != ba {
			t.Errorf("IdToAddr(AddrToId(%s)) = %s", s, got.String())
		}
	}

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		var ba BleAddr
		r.Read(ba.Bytes[:])
		if got := IdToAddr(AddrToId(ba)); got != ba {
			t.Fatalf("round trip failed for %s: got %s",
				ba.String(), got.String())
		}
	}
}

func TestAddrToIdByteOrder(t *testing.T) {
	ba, err := ParseBleAddr("01:02:03:04:05:06")
	if err != nil {
		t.Fatal(err)
	}

	if id := AddrToId(ba); id != 0x010203040506 {
		t.Errorf("AddrToId = 0x%x, want 0x010203040506", id)
	}

	a := IdToAddr(0xa1b2c3d4e5f6)
	if s := a.String(); s != "a1:b2:c3:d4:e5:f6" {
		t.Errorf("IdToAddr string = %s", s)
	}
}

func TestParseBleAddrInvalid(t *testing.T) {
	for _, s := range []string{"", "00:11:22", "zz:00:00:00:00:00",
		"00:11:22:33:44:55:66"} {

		if _, err := ParseBleAddr(s); err == nil {
			t.Errorf("ParseBleAddr(%q) succeeded", s)
		}
	}
}

func TestUuidShortForm(t *testing.T) {
	u := Uuid128FromShort(0xfde2)
	if s := u.String(); s != "0000fde2-0000-1000-8000-00805f9b34fb" {
		t.Fatalf("Uuid128FromShort = %s", s)
	}

	short, ok := u.ShortForm()
	if !ok || short != 0xfde2 {
		t.Errorf("ShortForm = 0x%x,%v", short, ok)
	}

	long, err := ParseUuid128("f1d0fff1-deaa-ecee-b42f-c9ba7ed623bb")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := long.ShortForm(); ok {
		t.Errorf("vendor UUID reported as short form")
	}
}

func TestCompareUuidsAcrossForms(t *testing.T) {
	a := BleUuid{U16: 0x2902}
	b := BleUuid{U128: Uuid128FromShort(0x2902)}

	if CompareUuids(a, b) != 0 {
		t.Errorf("16-bit and expanded UUID compare unequal")
	}
	if CompareUuids(a, BleUuid{U16: 0x2903}) == 0 {
		t.Errorf("distinct 16-bit UUIDs compare equal")
	}
}
