// +build windows

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

	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/adv"
	"github.com/cablex/cablex/cxact/cable"
)

type XportCfg struct {
	CtlrName   string
	AdvItvlMin uint16
	AdvItvlMax uint16
}

func NewXportCfg() XportCfg {
	return XportCfg{
		CtlrName: "default",
	}
}

type Handler interface {
	OnAccess(access BleGattAccess, rsp cable.AccessRspFn)
	OnMtuChanged(addr BleAddr, mtu int)
	OnNotifySent(addr BleAddr, success bool)
	OnConnState(addr BleAddr, connected bool)
}

type BllXport struct {
	cfg XportCfg
}

func NewBllXport(cfg XportCfg) *BllXport {
	return &BllXport{
		cfg: cfg,
	}
}

func (bx *BllXport) Start() error {
	return fmt.Errorf("Not Supported On Windows")
}

func (bx *BllXport) Stop() error {
	return fmt.Errorf("Not Supported On Windows")
}

func (bx *BllXport) BuildServer() (*GattServer, error) {
	return nil, fmt.Errorf("Not Supported On Windows")
}

func (bx *BllXport) BuildAdvertiser() (*Advertiser, error) {
	return nil, fmt.Errorf("Not Supported On Windows")
}

type GattServer struct{}

func (s *GattServer) SetHandler(h Handler) {}

func (s *GattServer) Open(svc BleSvc) error {
	return fmt.Errorf("Not Supported On Windows")
}

func (s *GattServer) Notify(addr BleAddr, chr BleUuid, val []byte) error {
	return fmt.Errorf("Not Supported On Windows")
}

func (s *GattServer) Close() error {
	return fmt.Errorf("Not Supported On Windows")
}

type Advertiser struct{}

func (a *Advertiser) Advertise(ad adv.Advert) error {
	return fmt.Errorf("Not Supported On Windows")
}

func (a *Advertiser) StopAdvertising() error {
	return fmt.Errorf("Not Supported On Windows")
}
