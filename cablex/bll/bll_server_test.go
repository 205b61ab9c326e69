// +build !windows

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

package bll

import (
	"testing"

	"github.com/JuulLabs-OSS/ble"

	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/cable"
)

func TestUuidConversion(t *testing.T) {
	uuids := []BleUuid{
		BleUuid{U16: 0xfffd},
		BleUuid{U16: BLE_UUID16_CCCD},
		MustParseUuid(cable.CtrlPtChrUuidStr),
		MustParseUuid(cable.SvcRevChrUuidStr),
	}

	for _, u := range uuids {
		bu := BllUuidFromUuid(u)
		back, err := UuidFromBllUuid(bu)
		if err != nil {
			t.Fatalf("UuidFromBllUuid(%s): %s", u.String(), err.Error())
		}
		if CompareUuids(u, back) != 0 {
			t.Errorf("round trip %s -> %s", u.String(), back.String())
		}
	}

	if !BllUuidFromUuid(MustParseUuid(cable.StatusChrUuidStr)).Equal(
		ble.MustParse(cable.StatusChrUuidStr)) {

		t.Errorf("128-bit UUID byte order differs from go-ble")
	}
	if !BllUuidFromUuid(BleUuid{U16: 0x2902}).Equal(ble.UUID16(0x2902)) {
		t.Errorf("16-bit UUID differs from go-ble")
	}
}

func TestBuildSvc(t *testing.T) {
	s := NewGattServer(nil)

	svc := BleSvc{
		Uuid:    BleUuid{U16: 0xfffd},
		SvcType: BLE_SVC_TYPE_PRIMARY,
		Chrs: []BleChr{
			BleChr{
				Uuid:  MustParseUuid(cable.CtrlPtChrUuidStr),
				Flags: BLE_GATT_F_WRITE,
			},
			BleChr{
				Uuid:  MustParseUuid(cable.StatusChrUuidStr),
				Flags: BLE_GATT_F_READ | BLE_GATT_F_NOTIFY,
				Dscs: []BleDsc{
					BleDsc{
						Uuid:     BleUuid{U16: BLE_UUID16_CCCD},
						AttFlags: BLE_ATT_F_WRITE,
					},
				},
			},
		},
	}

	bsvc, err := s.buildSvc(svc)
	if err != nil {
		t.Fatal(err)
	}

	if !bsvc.UUID.Equal(ble.UUID16(0xfffd)) {
		t.Errorf("service UUID %s", bsvc.UUID.String())
	}
	if len(bsvc.Characteristics) != 2 {
		t.Fatalf("%d characteristics", len(bsvc.Characteristics))
	}

	ctrl := bsvc.Characteristics[0]
	if ctrl.WriteHandler == nil || ctrl.ReadHandler != nil ||
		ctrl.NotifyHandler != nil {

		t.Errorf("control point handlers: read=%v write=%v notify=%v",
			ctrl.ReadHandler != nil, ctrl.WriteHandler != nil,
			ctrl.NotifyHandler != nil)
	}

	status := bsvc.Characteristics[1]
	if status.ReadHandler == nil || status.NotifyHandler == nil ||
		status.WriteHandler != nil {

		t.Errorf("status handlers: read=%v write=%v notify=%v",
			status.ReadHandler != nil, status.WriteHandler != nil,
			status.NotifyHandler != nil)
	}

	svc.SvcType = BLE_SVC_TYPE_SECONDARY
	if _, err := s.buildSvc(svc); err == nil {
		t.Errorf("secondary service accepted")
	}
}

func TestNotifyWithoutSubscriber(t *testing.T) {
	s := NewGattServer(nil)

	addr, _ := ParseBleAddr("01:02:03:04:05:06")
	err := s.Notify(addr, cable.StatusChrUuid, []byte{1})
	if err == nil {
		t.Fatalf("notify without subscriber succeeded")
	}

	sub := &subscriber{chr: cable.StatusChrUuid, ch: make(chan []byte, 1)}
	s.addSub(addr, sub)
	if err := s.Notify(addr, cable.StatusChrUuid, []byte{1}); err != nil {
		t.Fatalf("notify failed: %s", err.Error())
	}
	if err := s.Notify(addr, cable.StatusChrUuid, []byte{2}); err == nil {
		t.Errorf("notify into full queue succeeded")
	}
	if err := s.Notify(addr, cable.CtrlPtChrUuid, []byte{3}); err == nil {
		t.Errorf("notify on unsubscribed characteristic succeeded")
	}

	s.removeSub(addr, sub)
	if err := s.Notify(addr, cable.StatusChrUuid, []byte{1}); err == nil {
		t.Errorf("notify after unsubscribe succeeded")
	}
}
