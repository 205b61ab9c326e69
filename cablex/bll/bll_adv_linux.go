// +build linux

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
	"fmt"
	"sync"

	"github.com/JuulLabs-OSS/ble"
	"github.com/JuulLabs-OSS/ble/linux"
	"github.com/JuulLabs-OSS/ble/linux/hci/cmd"
	log "github.com/sirupsen/logrus"

	"mynewt.apache.org/newt/util"

	"github.com/cablex/cablex/cxact/adv"
)

const (
	ADV_TYPE_IND         = 0x00
	ADV_TYPE_NONCONN_IND = 0x03
)

// Advertiser drives the controller's legacy advertising directly over HCI, so
// that the exact AD bytes and connectability are under our control.
type Advertiser struct {
	hci    *linux.Device
	cfg    XportCfg
	mtx    sync.Mutex
	active bool
}

func newAdvertiser(dev ble.Device, cfg XportCfg) (*Advertiser, error) {
	ldev, ok := dev.(*linux.Device)
	if !ok {
		return nil, fmt.Errorf("BLE device is not an HCI device")
	}

	return &Advertiser{
		hci: ldev,
		cfg: cfg,
	}, nil
}

func (a *Advertiser) advParams(connectable bool) cmd.LESetAdvertisingParameters {
	advType := uint8(ADV_TYPE_NONCONN_IND)
	if connectable {
		advType = ADV_TYPE_IND
	}

	return cmd.LESetAdvertisingParameters{
		AdvertisingIntervalMin:  a.cfg.AdvItvlMin, // 0x0020 - 0x4000; N * 0.625 msec
		AdvertisingIntervalMax:  a.cfg.AdvItvlMax, // 0x0020 - 0x4000; N * 0.625 msec
		AdvertisingType:         advType,
		OwnAddressType:          0x00,      // Public Device Address
		DirectAddressType:       0x00,      // Unused for undirected adverts
		DirectAddress:           [6]byte{}, //
		AdvertisingChannelMap:   0x07,      // All three channels
		AdvertisingFilterPolicy: 0x00,      // Accept all
	}
}

func (a *Advertiser) stop() error {
	if !a.active {
		return nil
	}

	a.active = false
	if err := a.hci.HCI.StopAdvertising(); err != nil {
		return util.FmtNewtError("error stopping advertising: %s",
			err.Error())
	}

	return nil
}

func (a *Advertiser) Advertise(ad adv.Advert) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	if err := a.stop(); err != nil {
		log.Debugf("%s", err.Error())
	}

	data, err := ad.Bytes()
	if err != nil {
		return err
	}

	opt := ble.OptAdvParams(a.advParams(ad.Connectable()))
	if err := a.hci.HCI.Option(opt); err != nil {
		return util.FmtNewtError("error setting advertising parameters: %s",
			err.Error())
	}

	// Empty scan response: no name and no TX power.
	if err := a.hci.HCI.SetAdvertisement(data, nil); err != nil {
		return util.FmtNewtError("error setting advertising data: %s",
			err.Error())
	}

	if err := a.hci.HCI.Advertise(); err != nil {
		return util.FmtNewtError("error enabling advertising: %s",
			err.Error())
	}

	a.active = true
	return nil
}

func (a *Advertiser) StopAdvertising() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	return a.stop()
}
