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
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/JuulLabs-OSS/ble"
	log "github.com/sirupsen/logrus"

	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/cable"
)

// Values waiting to be notified to a single subscriber.
const NOTIFY_QUEUE_LEN = 16

// Handler receives events from the GATT server.  *cable.Transport implements
// it.
type Handler interface {
	OnAccess(access BleGattAccess, rsp cable.AccessRspFn)
	OnMtuChanged(addr BleAddr, mtu int)
	OnNotifySent(addr BleAddr, success bool)
	OnConnState(addr BleAddr, connected bool)
}

type subscriber struct {
	chr BleUuid
	ch  chan []byte
}

type connState struct {
	mtu int
}

// GattServer serves a single service from the host's native BLE device.
//
// go-ble handlers are synchronous: each one blocks its connection's goroutine
// until the handler has produced a response.  The server therefore waits for
// the handler's asynchronous response before returning.  go-ble also
// manages the CCCD itself, so subscriptions and unsubscriptions are reported
// to the handler as synthesized CCCD writes.
type GattServer struct {
	dev     ble.Device
	handler Handler

	mtx   sync.Mutex
	conns map[BleAddr]*connState
	subs  map[BleAddr]*subscriber
}

func NewGattServer(dev ble.Device) *GattServer {
	return &GattServer{
		dev:   dev,
		conns: map[BleAddr]*connState{},
		subs:  map[BleAddr]*subscriber{},
	}
}

// SetHandler must be called before Open.
func (s *GattServer) SetHandler(h Handler) {
	s.handler = h
}

func (s *GattServer) Open(svc BleSvc) error {
	if s.handler == nil {
		return fmt.Errorf("GATT server has no handler")
	}

	bsvc, err := s.buildSvc(svc)
	if err != nil {
		return err
	}

	return s.dev.AddService(bsvc)
}

func (s *GattServer) Close() error {
	s.mtx.Lock()
	s.subs = map[BleAddr]*subscriber{}
	s.mtx.Unlock()

	return s.dev.RemoveAllServices()
}

func (s *GattServer) Notify(addr BleAddr, chr BleUuid, val []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	sub := s.subs[addr]
	if sub == nil || CompareUuids(sub.chr, chr) != 0 {
		return fmt.Errorf("%s is not subscribed to %s", addr.String(),
			chr.String())
	}

	select {
	case sub.ch <- val:
		return nil
	default:
		return fmt.Errorf("notification queue full for %s", addr.String())
	}
}

// Registers a connection the first time it is seen and reports MTU changes.
func (s *GattServer) track(conn ble.Conn) (BleAddr, error) {
	addr, err := AddrFromBllAddr(conn.RemoteAddr())
	if err != nil {
		return addr, err
	}

	mtu := conn.TxMTU()

	s.mtx.Lock()
	cs := s.conns[addr]
	isNew := cs == nil
	mtuChanged := isNew || cs.mtu != mtu
	if isNew {
		cs = &connState{}
		s.conns[addr] = cs
	}
	cs.mtu = mtu
	s.mtx.Unlock()

	if isNew {
		s.handler.OnConnState(addr, true)
		go func() {
			<-conn.Disconnected()

			s.mtx.Lock()
			delete(s.conns, addr)
			s.mtx.Unlock()

			s.handler.OnConnState(addr, false)
		}()
	}

	if mtuChanged {
		s.handler.OnMtuChanged(addr, mtu)
	}

	return addr, nil
}

type accessRsp struct {
	status uint8
	val    []byte
}

// Hands an access to the handler and waits for its response.
func (s *GattServer) access(access BleGattAccess) accessRsp {
	ch := make(chan accessRsp, 1)
	s.handler.OnAccess(access, func(status uint8, val []byte) {
		ch <- accessRsp{status, val}
	})

	return <-ch
}

func (s *GattServer) serveAccess(access BleGattAccess, req ble.Request,
	rsp ble.ResponseWriter) {

	addr, err := s.track(req.Conn())
	if err != nil {
		log.Debugf("Rejecting access from unparseable peer: %s", err.Error())
		rsp.SetStatus(ble.ATTError(BLE_ATT_ERR_UNLIKELY))
		return
	}

	access.Addr = addr
	access.Offset = req.Offset()
	access.Data = req.Data()

	r := s.access(access)
	rsp.SetStatus(ble.ATTError(r.status))
	if r.status == 0 && len(r.val) > 0 {
		if _, err := rsp.Write(r.val); err != nil {
			log.Debugf("Failed to write response to %s: %s",
				addr.String(), err.Error())
		}
	}
}

func (s *GattServer) chrHandler(op BleGattOp,
	svc BleUuid, chr BleUuid) func(ble.Request, ble.ResponseWriter) {

	return func(req ble.Request, rsp ble.ResponseWriter) {
		s.serveAccess(BleGattAccess{
			Op:      op,
			SvcUuid: svc,
			ChrUuid: chr,
		}, req, rsp)
	}
}

func (s *GattServer) dscHandler(op BleGattOp, svc BleUuid, chr BleUuid,
	dsc BleUuid) func(ble.Request, ble.ResponseWriter) {

	return func(req ble.Request, rsp ble.ResponseWriter) {
		s.serveAccess(BleGattAccess{
			Op:      op,
			SvcUuid: svc,
			ChrUuid: chr,
			DscUuid: dsc,
		}, req, rsp)
	}
}

// Reports a subscription change as a CCCD write.
func (s *GattServer) writeCccd(addr BleAddr, svc BleUuid, chr BleUuid,
	val uint16) {

	data := make([]byte, BLE_CCCD_VALUE_LEN)
	binary.LittleEndian.PutUint16(data, val)

	r := s.access(BleGattAccess{
		Op:      BLE_GATT_ACCESS_OP_WRITE_DSC,
		Addr:    addr,
		SvcUuid: svc,
		ChrUuid: chr,
		DscUuid: BleUuid{U16: BLE_UUID16_CCCD},
		Data:    data,
	})
	if r.status != 0 {
		log.Debugf("CCCD write 0x%04x from %s rejected: %s", val,
			addr.String(), BleAttErrToString(r.status))
	}
}

func (s *GattServer) addSub(addr BleAddr, sub *subscriber) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.subs[addr] = sub
}

func (s *GattServer) removeSub(addr BleAddr, sub *subscriber) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.subs[addr] == sub {
		delete(s.subs, addr)
	}
}

func (s *GattServer) notifyHandler(svc BleUuid,
	chr BleUuid) func(ble.Request, ble.Notifier) {

	return func(req ble.Request, n ble.Notifier) {
		addr, err := s.track(req.Conn())
		if err != nil {
			log.Debugf("Ignoring subscription from unparseable peer: %s",
				err.Error())
			return
		}

		sub := &subscriber{
			chr: chr,
			ch:  make(chan []byte, NOTIFY_QUEUE_LEN),
		}
		s.addSub(addr, sub)
		s.writeCccd(addr, svc, chr, BLE_CCCD_NOTIFY)

		log.Debugf("%s subscribed to %s", addr.String(), chr.String())

		defer func() {
			s.removeSub(addr, sub)
			s.writeCccd(addr, svc, chr, BLE_CCCD_DISABLED)
			log.Debugf("%s unsubscribed from %s", addr.String(),
				chr.String())
		}()

		for {
			select {
			case <-n.Context().Done():
				return

			case val := <-sub.ch:
				_, err := n.Write(val)
				if err != nil {
					log.Debugf("Failed to notify %s: %s", addr.String(),
						err.Error())
				}
				s.handler.OnNotifySent(addr, err == nil)
			}
		}
	}
}

// Converts a service definition into a go-ble service whose handlers feed
// the server's handler.
func (s *GattServer) buildSvc(svc BleSvc) (*ble.Service, error) {
	if svc.SvcType != BLE_SVC_TYPE_PRIMARY {
		return nil, fmt.Errorf("unsupported service type: %s",
			BleSvcTypeToString(svc.SvcType))
	}

	bsvc := ble.NewService(BllUuidFromUuid(svc.Uuid))

	for _, chr := range svc.Chrs {
		bchr := bsvc.NewCharacteristic(BllUuidFromUuid(chr.Uuid))

		if chr.Flags&BLE_GATT_F_READ != 0 {
			bchr.HandleRead(ble.ReadHandlerFunc(
				s.chrHandler(BLE_GATT_ACCESS_OP_READ_CHR, svc.Uuid,
					chr.Uuid)))
		}
		if chr.Flags&(BLE_GATT_F_WRITE|BLE_GATT_F_WRITE_NO_RSP) != 0 {
			bchr.HandleWrite(ble.WriteHandlerFunc(
				s.chrHandler(BLE_GATT_ACCESS_OP_WRITE_CHR, svc.Uuid,
					chr.Uuid)))
		}
		if chr.Flags&BLE_GATT_F_NOTIFY != 0 {
			bchr.HandleNotify(ble.NotifyHandlerFunc(
				s.notifyHandler(svc.Uuid, chr.Uuid)))
		}

		for _, dsc := range chr.Dscs {
			// go-ble creates and serves the CCCD for notifiable
			// characteristics.
			if dsc.Uuid.U16 == BLE_UUID16_CCCD {
				continue
			}

			bdsc := bchr.NewDescriptor(BllUuidFromUuid(dsc.Uuid))
			if dsc.AttFlags&BLE_ATT_F_READ != 0 {
				bdsc.HandleRead(ble.ReadHandlerFunc(
					s.dscHandler(BLE_GATT_ACCESS_OP_READ_DSC, svc.Uuid,
						chr.Uuid, dsc.Uuid)))
			}
			if dsc.AttFlags&BLE_ATT_F_WRITE != 0 {
				bdsc.HandleWrite(ble.WriteHandlerFunc(
					s.dscHandler(BLE_GATT_ACCESS_OP_WRITE_DSC, svc.Uuid,
						chr.Uuid, dsc.Uuid)))
			}
		}
	}

	return bsvc, nil
}
