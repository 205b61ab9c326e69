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
	"encoding/binary"

	. "github.com/cablex/cablex/cxact/bledefs"
)

const (
	FidoSvcUuid16 BleUuid16 = 0xfffd

	CtrlPtChrUuidStr    = "f1d0fff1-deaa-ecee-b42f-c9ba7ed623bb"
	StatusChrUuidStr    = "f1d0fff2-deaa-ecee-b42f-c9ba7ed623bb"
	CtrlPtLenChrUuidStr = "f1d0fff3-deaa-ecee-b42f-c9ba7ed623bb"
	SvcRevChrUuidStr    = "f1d0fff4-deaa-ecee-b42f-c9ba7ed623bb"

	// FIDO2 only.
	SVC_REV_FIDO2 = 0x20
)

var (
	FidoSvcUuid      = BleUuid{U16: FidoSvcUuid16}
	CtrlPtChrUuid    = MustParseUuid(CtrlPtChrUuidStr)
	StatusChrUuid    = MustParseUuid(StatusChrUuidStr)
	CtrlPtLenChrUuid = MustParseUuid(CtrlPtLenChrUuidStr)
	SvcRevChrUuid    = MustParseUuid(SvcRevChrUuidStr)
	CccdDscUuid      = BleUuid{U16: BLE_UUID16_CCCD}
)

// Access callbacks backing the FIDO service.
type svcCbs struct {
	CtrlPt    BleGattAccessFn
	Status    BleGattAccessFn
	StatusDsc BleGattAccessFn
	CtrlPtLen BleGattAccessFn
	SvcRev    BleGattAccessFn
}

// Builds the definition of the primary FIDO service.
func fidoSvc(cbs svcCbs) BleSvc {
	return BleSvc{
		Uuid:    FidoSvcUuid,
		SvcType: BLE_SVC_TYPE_PRIMARY,
		Chrs: []BleChr{
			BleChr{
				Uuid:     CtrlPtChrUuid,
				Flags:    BLE_GATT_F_WRITE,
				AccessCb: cbs.CtrlPt,
			},
			BleChr{
				Uuid:     StatusChrUuid,
				Flags:    BLE_GATT_F_READ | BLE_GATT_F_NOTIFY,
				AccessCb: cbs.Status,
				Dscs: []BleDsc{
					BleDsc{
						Uuid:     CccdDscUuid,
						AttFlags: BLE_ATT_F_WRITE,
						AccessCb: cbs.StatusDsc,
					},
				},
			},
			BleChr{
				Uuid:     CtrlPtLenChrUuid,
				Flags:    BLE_GATT_F_READ,
				AccessCb: cbs.CtrlPtLen,
			},
			BleChr{
				Uuid:     SvcRevChrUuid,
				Flags:    BLE_GATT_F_READ | BLE_GATT_F_WRITE,
				AccessCb: cbs.SvcRev,
			},
		},
	}
}

// Encodes a control point length as a two-byte big-endian value.
func encodeCtrlPtLen(mtu int) []byte {
	if mtu > 0xffff {
		mtu = 0xffff
	}

	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, uint16(mtu))
	return b
}

func decodeCccd(data []byte) (uint16, bool) {
	if len(data) != BLE_CCCD_VALUE_LEN {
		return 0, false
	}

	return binary.LittleEndian.Uint16(data), true
}
