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
	"fmt"

	"github.com/JuulLabs-OSS/ble"
	"github.com/JuulLabs-OSS/ble/examples/lib/dev"
	log "github.com/sirupsen/logrus"
)

type XportCfg struct {
	CtlrName string

	// Advertising interval bounds, in units of 0.625 ms.
	AdvItvlMin uint16
	AdvItvlMax uint16
}

func NewXportCfg() XportCfg {
	return XportCfg{
		CtlrName:   "default",
		AdvItvlMin: 0x00a0,
		AdvItvlMax: 0x00f0,
	}
}

// BllXport owns the host's native BLE device.
type BllXport struct {
	cfg XportCfg
	dev ble.Device
}

func NewBllXport(cfg XportCfg) *BllXport {
	return &BllXport{
		cfg: cfg,
	}
}

func (bx *BllXport) Start() error {
	if bx.dev != nil {
		return fmt.Errorf("BLE transport already started")
	}

	d, err := dev.NewDevice(bx.cfg.CtlrName)
	if err != nil {
		return err
	}

	ble.SetDefaultDevice(d)
	bx.dev = d

	log.Debugf("Opened BLE controller \"%s\"", bx.cfg.CtlrName)
	return nil
}

func (bx *BllXport) Stop() error {
	if bx.dev == nil {
		return fmt.Errorf("BLE transport not started")
	}

	bx.dev = nil
	if err := ble.Stop(); err != nil {
		return err
	}

	return nil
}

func (bx *BllXport) Device() ble.Device {
	return bx.dev
}

// Builds a GATT server on top of the started device.
func (bx *BllXport) BuildServer() (*GattServer, error) {
	if bx.dev == nil {
		return nil, fmt.Errorf("BLE transport not started")
	}

	return NewGattServer(bx.dev), nil
}

// Builds an advertiser on top of the started device.
func (bx *BllXport) BuildAdvertiser() (*Advertiser, error) {
	if bx.dev == nil {
		return nil, fmt.Errorf("BLE transport not started")
	}

	return newAdvertiser(bx.dev, bx.cfg)
}
