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

// Package adv builds the advertisements that make an exported authenticator
// discoverable.  A discovery advert carries a 20-byte payload split across
// two service UUIDs, because scanners on the other side filter on service
// UUIDs rather than on arbitrary advertisement data.  A connect advert
// carries a single 16-byte UUID and is the only connectable variant.
package adv

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cablex/cablex/cxact/bledefs"
)

// Pre-registered 16-bit UUID identifying the caBLE protocol family.
const CableUuid16 bledefs.BleUuid16 = 0xfde2

const DISCOVERY_PAYLOAD_LEN = 20

// Legacy advertising payload limit.
const BLE_ADV_DATA_MAX_LEN = 31

// AD structure types.
const (
	BLE_AD_TYPE_FLAGS         = 0x01
	BLE_AD_TYPE_UUIDS16_COMP  = 0x03
	BLE_AD_TYPE_UUIDS32_COMP  = 0x05
	BLE_AD_TYPE_UUIDS128_COMP = 0x07
)

const (
	BLE_AD_F_DISC_GEN     = 0x02
	BLE_AD_F_BREDR_UNSUPP = 0x04
)

type Kind int

const (
	KIND_DISCOVERY Kind = iota
	KIND_CONNECT
)

var kindStringMap = map[Kind]string{
	KIND_DISCOVERY: "discovery",
	KIND_CONNECT:   "connect",
}

func KindToString(k Kind) string {
	s := kindStringMap[k]
	if s == "" {
		return "???"
	}
	return s
}

// An advertisement, ready to be handed to an advertiser.  The device name and
// TX power level are never included.
type Advert struct {
	Kind     Kind
	ConnMode bledefs.BleAdvConnMode
	Uuids    []bledefs.BleUuid
}

func (a *Advert) Connectable() bool {
	return a.ConnMode != bledefs.BLE_ADV_CONN_MODE_NON
}

func (a *Advert) String() string {
	return fmt.Sprintf("kind=%s conn_mode=%s uuids=[%s]",
		KindToString(a.Kind),
		bledefs.BleAdvConnModeToString(a.ConnMode),
		strings.Join(a.UuidStrings(), " "))
}

// UuidStrings renders each advertised UUID in canonical 128-bit form.
func (a *Advert) UuidStrings() []string {
	ss := make([]string, len(a.Uuids))
	for i, u := range a.Uuids {
		ss[i] = uuid.UUID(u.Full()).String()
	}
	return ss
}

// DiscoveryUuids derives the two payload-carrying UUIDs of a discovery advert.
// The first is bytes 0-15 verbatim.  The second places bytes 16-19 in the
// short-UUID slot of the Bluetooth base UUID so that receivers that only
// understand 16/32-bit UUIDs still see it.
func DiscoveryUuids(payload [DISCOVERY_PAYLOAD_LEN]byte) (
	bledefs.BleUuid, bledefs.BleUuid) {

	var full bledefs.BleUuid128
	copy(full[:], payload[:16])

	short := binary.BigEndian.Uint32(payload[16:20])

	return bledefs.BleUuid{U128: full},
		bledefs.BleUuid{U128: bledefs.Uuid128FromShort(short)}
}

// DiscoveryAdvert builds the non-connectable advert for a 20-byte payload.
func DiscoveryAdvert(payload [DISCOVERY_PAYLOAD_LEN]byte) Advert {
	u1, u2 := DiscoveryUuids(payload)

	return Advert{
		Kind:     KIND_DISCOVERY,
		ConnMode: bledefs.BLE_ADV_CONN_MODE_NON,
		Uuids: []bledefs.BleUuid{
			bledefs.BleUuid{U16: CableUuid16},
			u1,
			u2,
		},
	}
}

// ConnectAdvert builds the connectable advert for a 16-byte UUID.
func ConnectAdvert(u [16]byte) Advert {
	return Advert{
		Kind:     KIND_CONNECT,
		ConnMode: bledefs.BLE_ADV_CONN_MODE_UND,
		Uuids: []bledefs.BleUuid{
			bledefs.BleUuid{U16: CableUuid16},
			bledefs.BleUuid{U128: bledefs.BleUuid128(u)},
		},
	}
}

// ParseConnectUuid accepts any textual UUID form (canonical, braced, urn or
// bare hex).
func ParseConnectUuid(s string) ([16]byte, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return [16]byte{}, fmt.Errorf("invalid connect UUID \"%s\": %s",
			s, err.Error())
	}
	return [16]byte(u), nil
}

func appendField(b []byte, adType byte, data []byte) []byte {
	b = append(b, byte(len(data)+1), adType)
	return append(b, data...)
}

// Bytes encodes the advert as a sequence of AD structures.  UUIDs are grouped
// into complete 16-, 32- and 128-bit lists, each in its shortest valid form.
func (a *Advert) Bytes() ([]byte, error) {
	var u16s []byte
	var u32s []byte
	var u128s []byte

	for _, u := range a.Uuids {
		full := u.Full()
		if short, ok := full.ShortForm(); ok {
			if short <= 0xffff {
				u16s = append(u16s, byte(short), byte(short>>8))
			} else {
				var b [4]byte
				binary.LittleEndian.PutUint32(b[:], short)
				u32s = append(u32s, b[:]...)
			}
			continue
		}

		// 128-bit UUIDs go over the air least significant byte first.
		for i := len(full) - 1; i >= 0; i-- {
			u128s = append(u128s, full[i])
		}
	}

	var b []byte
	if a.Connectable() {
		b = appendField(b, BLE_AD_TYPE_FLAGS,
			[]byte{BLE_AD_F_DISC_GEN | BLE_AD_F_BREDR_UNSUPP})
	}
	if len(u16s) > 0 {
		b = appendField(b, BLE_AD_TYPE_UUIDS16_COMP, u16s)
	}
	if len(u32s) > 0 {
		b = appendField(b, BLE_AD_TYPE_UUIDS32_COMP, u32s)
	}
	if len(u128s) > 0 {
		b = appendField(b, BLE_AD_TYPE_UUIDS128_COMP, u128s)
	}

	if len(b) > BLE_ADV_DATA_MAX_LEN {
		return nil, fmt.Errorf("advertisement too large: %d > %d bytes",
			len(b), BLE_ADV_DATA_MAX_LEN)
	}

	return b, nil
}
