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

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	. "github.com/cablex/cablex/cxact/bledefs"
	"github.com/cablex/cablex/cxact/adv"
	"github.com/cablex/cablex/cxact/cxutil"
	"github.com/cablex/cablex/cxact/engine"
	"github.com/cablex/cablex/cxact/task"
)

type State int

const (
	STATE_STOPPED State = iota
	STATE_STARTING
	STATE_EXPORTING
)

var stateStringMap = map[State]string{
	STATE_STOPPED:   "stopped",
	STATE_STARTING:  "starting",
	STATE_EXPORTING: "exporting",
}

func (s State) String() string {
	str := stateStringMap[s]
	if str == "" {
		return "???"
	}
	return str
}

// Called with the outcome of a GATT access.  For reads, val is the attribute
// value.
type AccessRspFn func(status uint8, val []byte)

type XportCfg struct {
	Server     GattServer
	Advertiser Advertiser
	Launcher   engine.Launcher

	// Optional.
	Saver    StateSaver
	Listener Listener

	// Maximum number of clients whose MTU is remembered.
	SesnCap int
}

func NewXportCfg() XportCfg {
	return XportCfg{
		SesnCap: SESN_CAP_DFLT,
	}
}

// Snapshot of the transport, for display.
type Status struct {
	State   State
	Bound   string
	Advert  string
	Known   int
	Sending int
	Backlog int
}

// Transport exports a FIDO authenticator over a BLE GATT service.  Every
// stack callback and every call into the engine runs as a task on a single
// queue, so none of the fields below need locking.
//
// A Transport serves one export session.  Once stopped it cannot be
// restarted.
type Transport struct {
	cfg  XportCfg
	tq   task.TaskQueue
	cm   chrMgr
	st   *SesnTable
	pump *Pump

	state  State
	eng    engine.Engine
	bound  *BleAddr
	advert *adv.Advert

	// Runs after the response to the current access has been sent.
	afterRsp func()
}

func NewTransport(cfg XportCfg) (*Transport, error) {
	if cfg.Server == nil || cfg.Advertiser == nil || cfg.Launcher == nil {
		return nil, fmt.Errorf("transport requires a server, advertiser " +
			"and engine launcher")
	}

	if cfg.Listener == nil {
		cfg.Listener = nullListener{}
	}

	st, err := NewSesnTable(cfg.SesnCap)
	if err != nil {
		return nil, err
	}

	x := &Transport{
		cfg: cfg,
		tq:  task.NewTaskQueue("cable"),
		st:  st,
	}
	x.pump = NewPump(st, x.notifyStatus)

	if err := x.tq.Start(); err != nil {
		return nil, err
	}

	return x, nil
}

func (x *Transport) notifyStatus(addr BleAddr, val []byte) error {
	return x.cfg.Server.Notify(addr, StatusChrUuid, val)
}

func (x *Transport) svc() BleSvc {
	return fidoSvc(svcCbs{
		CtrlPt:    x.ctrlPtAccess,
		Status:    x.statusAccess,
		StatusDsc: x.cccdAccess,
		CtrlPtLen: x.ctrlPtLenAccess,
		SvcRev:    x.svcRevAccess,
	})
}

// Queues fn on the transport's task queue.  Returns false if the transport
// has been stopped.
func (x *Transport) submit(name string, fn func()) bool {
	err := x.tq.Submit(func() error {
		fn()
		return nil
	})
	if err != nil {
		log.Debugf("cable: dropping %s: %s", name, err.Error())
		return false
	}

	return true
}

func (x *Transport) exporting(what string) bool {
	if x.state != STATE_EXPORTING {
		log.Debugf("cable: ignoring %s; transport %s", what, x.state)
		return false
	}

	return true
}

///////////////////////////////////////////////////////////////////////////////
// $lifecycle                                                                //
///////////////////////////////////////////////////////////////////////////////

func (x *Transport) start(state []byte) error {
	if x.state != STATE_STOPPED || x.eng != nil {
		return fmt.Errorf("transport already started")
	}
	x.state = STATE_STARTING

	svc := x.svc()
	if err := x.cm.SetServices([]BleSvc{svc}); err != nil {
		x.state = STATE_STOPPED
		return err
	}

	if err := x.cfg.Server.Open(svc); err != nil {
		x.state = STATE_STOPPED
		return errors.Wrapf(err, "failed to register service %s",
			FidoSvcUuid.String())
	}

	eng, err := x.cfg.Launcher.Start(&xportHost{x: x}, state)
	if err != nil {
		if cerr := x.cfg.Server.Close(); cerr != nil {
			log.Warnf("cable: failed to close GATT server: %s", cerr.Error())
		}
		x.state = STATE_STOPPED
		return errors.Wrapf(err, "failed to start engine")
	}

	x.eng = eng
	x.state = STATE_EXPORTING
	log.Infof("cable: exporting service %s", FidoSvcUuid.String())

	return nil
}

// Runs fn on the task queue and waits for it.
func (x *Transport) run(fn func() error) error {
	err := x.tq.Run(fn)
	if err == task.InactiveError {
		return cxutil.NewNotExportingError("transport stopped")
	}

	return err
}

// Start registers the FIDO service and starts the engine, seeding it with
// previously persisted state (nil if none).  It does not advertise.
func (x *Transport) Start(state []byte) error {
	return x.run(func() error {
		return x.start(state)
	})
}

func (x *Transport) stop() {
	x.stopAdvertising()

	if x.eng != nil {
		x.eng.Stop()
		x.eng = nil
	}

	if x.state != STATE_STOPPED {
		if err := x.cfg.Server.Close(); err != nil {
			log.Warnf("cable: failed to close GATT server: %s", err.Error())
		}
	}

	x.st.Clear()
	x.bound = nil
	x.afterRsp = nil
	x.state = STATE_STOPPED
}

// Stop ends the export session.  Callbacks that arrive afterwards are answered
// with a failure.
func (x *Transport) Stop() error {
	if err := x.run(func() error {
		x.stop()
		return nil
	}); err != nil {
		return err
	}

	log.Infof("cable: export stopped")
	return x.tq.Stop(cxutil.NewNotExportingError("transport stopped"))
}

func (x *Transport) Status() (Status, error) {
	var s Status

	err := x.run(func() error {
		s.State = x.state
		if x.bound != nil {
			s.Bound = x.bound.String()
		}
		if x.advert != nil {
			s.Advert = x.advert.String()
		}
		s.Known = x.st.NumKnown()
		s.Sending = x.st.NumSending()
		s.Backlog = x.tq.Backlog()
		return nil
	})

	return s, err
}

///////////////////////////////////////////////////////////////////////////////
// $advertising                                                              //
///////////////////////////////////////////////////////////////////////////////

func (x *Transport) stopAdvertising() {
	if x.advert == nil {
		return
	}

	if err := x.cfg.Advertiser.StopAdvertising(); err != nil {
		log.Warnf("cable: failed to stop %s advertisement: %s",
			adv.KindToString(x.advert.Kind), err.Error())
	}
	x.advert = nil
}

func (x *Transport) advertise(a adv.Advert) {
	if !x.exporting("advertisement") {
		return
	}

	x.stopAdvertising()

	if err := x.cfg.Advertiser.Advertise(a); err != nil {
		log.Warnf("cable: failed to start %s advertisement: %s",
			adv.KindToString(a.Kind), err.Error())
		return
	}

	log.Debugf("cable: advertising %s", a.String())
	x.advert = &a
}

// AdvertiseDiscovery replaces the current advertisement with a non-connectable
// one carrying the UUIDs derived from a discovery payload.
func (x *Transport) AdvertiseDiscovery(payload [adv.DISCOVERY_PAYLOAD_LEN]byte) {
	x.submit("discovery advertisement", func() {
		x.advertise(adv.DiscoveryAdvert(payload))
	})
}

// AdvertiseConnect replaces the current advertisement with a connectable one
// carrying the given UUID.
func (x *Transport) AdvertiseConnect(uuid [16]byte) {
	x.submit("connect advertisement", func() {
		x.advertise(adv.ConnectAdvert(uuid))
	})
}

func (x *Transport) StopAdvertising() {
	x.submit("advertisement stop", x.stopAdvertising)
}

///////////////////////////////////////////////////////////////////////////////
// $stack callbacks                                                          //
///////////////////////////////////////////////////////////////////////////////

// OnAccess handles a read or write of one of the service's attributes.  rsp
// is called exactly once, from the task queue, or immediately with a failure
// if the transport is stopped.
func (x *Transport) OnAccess(access BleGattAccess, rsp AccessRspFn) {
	ok := x.submit("gatt access", func() {
		if !x.exporting("gatt access") {
			rsp(BLE_ATT_ERR_UNLIKELY, nil)
			return
		}

		status, val := x.cm.Access(access)
		if status != 0 {
			log.Debugf("cable: access rejected (%s): %s",
				BleAttErrToString(status), access.String())
		}
		rsp(status, val)

		if fn := x.afterRsp; fn != nil {
			x.afterRsp = nil
			fn()
		}
	})

	if !ok {
		rsp(BLE_ATT_ERR_UNLIKELY, nil)
	}
}

func (x *Transport) OnMtuChanged(addr BleAddr, mtu int) {
	x.submit("mtu change", func() {
		x.st.OnMtuNegotiated(addr, mtu)
		log.Debugf("cable: %s mtu=%d fragment=%d", addr.String(), mtu,
			x.st.MtuFor(addr))
	})
}

// OnNotifySent reports the outcome of a notification sent with
// GattServer.Notify.
func (x *Transport) OnNotifySent(addr BleAddr, success bool) {
	x.submit("notification outcome", func() {
		x.pump.OnDeliveryConfirmed(addr, success)
	})
}

func (x *Transport) OnConnState(addr BleAddr, connected bool) {
	x.submit("connection change", func() {
		if connected {
			log.Debugf("cable: %s connected", addr.String())
			return
		}

		log.Debugf("cable: %s disconnected", addr.String())
		x.st.Purge(addr)
		if x.bound != nil && *x.bound == addr {
			x.cfg.Listener.OnPeerDisconnected(addr)
		}
	})
}

// OnQrScanned passes a scanned handshake payload to the engine unchanged.
func (x *Transport) OnQrScanned(value string) {
	x.submit("qr scan", func() {
		if x.exporting("qr scan") {
			x.eng.OnQrScanned(value)
		}
	})
}

///////////////////////////////////////////////////////////////////////////////
// $attribute access                                                         //
///////////////////////////////////////////////////////////////////////////////

// Binds the export session to the first peer that writes to the control
// point.  Only that peer may write afterwards.
func (x *Transport) authorize(addr BleAddr) error {
	if x.bound == nil {
		x.bound = &addr
		log.Infof("cable: bound to %s", addr.String())
		x.cfg.Listener.OnPeerConnected(addr)
		return nil
	}

	if *x.bound != addr {
		return cxutil.NewUnboundPeerError(addr.String(),
			"session is bound to "+x.bound.String())
	}

	return nil
}

func (x *Transport) ctrlPtAccess(access BleGattAccess) (uint8, []byte) {
	if len(access.Data) == 0 {
		return BLE_ATT_ERR_INVALID_ATTR_VALUE_LEN, nil
	}

	if err := x.authorize(access.Addr); err != nil {
		log.Debugf("cable: dropping write from %s: %s",
			access.Addr.String(), err.Error())
		return BLE_ATT_ERR_WRITE_NOT_PERMITTED, nil
	}

	mtu := x.st.MtuFor(access.Addr)
	frags, err := x.eng.Write(AddrToId(access.Addr), uint16(mtu), access.Data)
	if err != nil {
		if cxutil.IsEngineReject(err) {
			log.Debugf("cable: engine rejected write from %s: %s",
				access.Addr.String(), err.Error())
		} else {
			log.Warnf("cable: engine failed on write from %s: %s",
				access.Addr.String(), err.Error())
		}
		return BLE_ATT_ERR_UNLIKELY, nil
	}

	if len(frags) > 0 {
		addr := access.Addr
		x.afterRsp = func() { x.sendFrags(addr, frags) }
	}

	return 0, nil
}

func (x *Transport) statusAccess(access BleGattAccess) (uint8, []byte) {
	// Status is only ever delivered via notification.
	return BLE_ATT_ERR_READ_NOT_PERMITTED, nil
}

func (x *Transport) cccdAccess(access BleGattAccess) (uint8, []byte) {
	val, ok := decodeCccd(access.Data)
	if !ok {
		return BLE_ATT_ERR_INVALID_ATTR_VALUE_LEN, nil
	}

	switch val {
	case BLE_CCCD_NOTIFY:
		return 0, nil

	case BLE_CCCD_DISABLED:
		x.pump.Cancel(access.Addr)
		return 0, nil

	default:
		return BLE_ATT_ERR_CCCD_IMPROPER, nil
	}
}

func (x *Transport) ctrlPtLenAccess(access BleGattAccess) (uint8, []byte) {
	return 0, encodeCtrlPtLen(x.st.MtuFor(access.Addr))
}

func (x *Transport) svcRevAccess(access BleGattAccess) (uint8, []byte) {
	if access.Op == BLE_GATT_ACCESS_OP_READ_CHR {
		return 0, []byte{SVC_REV_FIDO2}
	}

	// Accepted, not interpreted.
	return 0, nil
}

func (x *Transport) sendFrags(addr BleAddr, frags [][]byte) {
	err := x.pump.EnqueueAndStart(addr, frags)
	switch {
	case err == nil:
	case cxutil.IsPumpBusy(err):
		log.Errorf("cable: %s", err.Error())
	default:
		log.Debugf("cable: %s", err.Error())
	}
}

///////////////////////////////////////////////////////////////////////////////
// $engine host                                                              //
///////////////////////////////////////////////////////////////////////////////

// Implements engine.Host.  Every call becomes a task.
type xportHost struct {
	x *Transport
}

func (h *xportHost) SendNotification(client uint64, frags [][]byte) {
	cp := make([][]byte, len(frags))
	copy(cp, frags)

	h.x.submit("engine notification", func() {
		if h.x.exporting("engine notification") {
			h.x.sendFrags(IdToAddr(client), cp)
		}
	})
}

func (h *xportHost) SetPersistedState(state []byte) {
	cp := append([]byte(nil), state...)

	h.x.submit("state update", func() {
		if h.x.cfg.Saver == nil {
			return
		}
		if err := h.x.cfg.Saver.SaveState(cp); err != nil {
			log.Errorf("cable: failed to persist engine state: %s",
				err.Error())
		}
	})
}

func (h *xportHost) SendBleAdvert(uuid [16]byte) {
	h.x.submit("engine advertisement", func() {
		h.x.advertise(adv.ConnectAdvert(uuid))
	})
}

func (h *xportHost) Complete(r engine.Result) {
	h.x.submit("engine completion", func() {
		h.x.cfg.Listener.OnComplete(r)
	})
}
