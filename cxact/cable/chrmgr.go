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
	"fmt"

	. "github.com/cablex/cablex/cxact/bledefs"
)

type chrMgrElem struct {
	SvcUuid BleUuid
	ChrUuid BleUuid
	Flags   BleChrFlags
	Cb      BleGattAccessFn
}

type dscMgrElem struct {
	ChrUuid  BleUuid
	DscUuid  BleUuid
	AttFlags BleAttFlags
	Cb       BleGattAccessFn
}

type dscKey struct {
	Chr BleUuid128
	Dsc BleUuid128
}

// Routes GATT accesses to the callback registered for the target attribute.
type chrMgr struct {
	chrs map[BleUuid128]chrMgrElem
	dscs map[dscKey]dscMgrElem
}

func (cm *chrMgr) Clear() {
	cm.chrs = map[BleUuid128]chrMgrElem{}
	cm.dscs = map[dscKey]dscMgrElem{}
}

func (cm *chrMgr) SetServices(svcs []BleSvc) error {
	cm.Clear()

	for _, svc := range svcs {
		for _, chr := range svc.Chrs {
			key := chr.Uuid.Full()
			if _, ok := cm.chrs[key]; ok {
				return fmt.Errorf("Duplicate characteristic: %s",
					chr.Uuid.String())
			}

			cm.chrs[key] = chrMgrElem{
				SvcUuid: svc.Uuid,
				ChrUuid: chr.Uuid,
				Flags:   chr.Flags,
				Cb:      chr.AccessCb,
			}

			for _, dsc := range chr.Dscs {
				dk := dscKey{Chr: key, Dsc: dsc.Uuid.Full()}
				if _, ok := cm.dscs[dk]; ok {
					return fmt.Errorf("Duplicate descriptor: %s/%s",
						chr.Uuid.String(), dsc.Uuid.String())
				}

				cm.dscs[dk] = dscMgrElem{
					ChrUuid:  chr.Uuid,
					DscUuid:  dsc.Uuid,
					AttFlags: dsc.AttFlags,
					Cb:       dsc.AccessCb,
				}
			}
		}
	}

	return nil
}

func (cm *chrMgr) accessChr(access BleGattAccess) (uint8, []byte) {
	chr, ok := cm.chrs[access.ChrUuid.Full()]
	if !ok {
		return BLE_ATT_ERR_INVALID_HANDLE, nil
	}

	switch access.Op {
	case BLE_GATT_ACCESS_OP_READ_CHR:
		if chr.Flags&BLE_GATT_F_READ == 0 {
			return BLE_ATT_ERR_READ_NOT_PERMITTED, nil
		}
	case BLE_GATT_ACCESS_OP_WRITE_CHR:
		if chr.Flags&(BLE_GATT_F_WRITE|BLE_GATT_F_WRITE_NO_RSP) == 0 {
			return BLE_ATT_ERR_WRITE_NOT_PERMITTED, nil
		}
	}

	if chr.Cb == nil {
		return 0, nil
	}

	access.SvcUuid = chr.SvcUuid
	return chr.Cb(access)
}

func (cm *chrMgr) accessDsc(access BleGattAccess) (uint8, []byte) {
	dk := dscKey{Chr: access.ChrUuid.Full(), Dsc: access.DscUuid.Full()}
	dsc, ok := cm.dscs[dk]
	if !ok {
		return BLE_ATT_ERR_INVALID_HANDLE, nil
	}

	switch access.Op {
	case BLE_GATT_ACCESS_OP_READ_DSC:
		if dsc.AttFlags&BLE_ATT_F_READ == 0 {
			return BLE_ATT_ERR_READ_NOT_PERMITTED, nil
		}
	case BLE_GATT_ACCESS_OP_WRITE_DSC:
		if dsc.AttFlags&BLE_ATT_F_WRITE == 0 {
			return BLE_ATT_ERR_WRITE_NOT_PERMITTED, nil
		}
	}

	if dsc.Cb == nil {
		return 0, nil
	}

	return dsc.Cb(access)
}

// Access dispatches a single GATT access and returns the ATT status and, for
// reads, the value.  Long reads and prepared writes are not supported, so any
// non-zero offset is refused before a callback sees it.
func (cm *chrMgr) Access(access BleGattAccess) (uint8, []byte) {
	if access.Offset != 0 {
		return BLE_ATT_ERR_INVALID_OFFSET, nil
	}

	switch access.Op {
	case BLE_GATT_ACCESS_OP_READ_CHR, BLE_GATT_ACCESS_OP_WRITE_CHR:
		return cm.accessChr(access)

	case BLE_GATT_ACCESS_OP_READ_DSC, BLE_GATT_ACCESS_OP_WRITE_DSC:
		return cm.accessDsc(access)

	default:
		return BLE_ATT_ERR_REQ_NOT_SUPPORTED, nil
	}
}
