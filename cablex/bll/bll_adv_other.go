// +build !linux,!windows

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
	"sync"

	"github.com/JuulLabs-OSS/ble"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/cablex/cablex/cxact/adv"
)

// Advertiser uses the platform's high-level advertising API.  The OS decides
// connectability and may add fields of its own; only the service UUIDs are
// requested.
type Advertiser struct {
	dev    ble.Device
	mtx    sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newAdvertiser(dev ble.Device, cfg XportCfg) (*Advertiser, error) {
	return &Advertiser{
		dev: dev,
	}, nil
}

func (a *Advertiser) stop() {
	if a.cancel == nil {
		return
	}

	a.cancel()
	<-a.done

	a.cancel = nil
	a.done = nil
}

func (a *Advertiser) Advertise(ad adv.Advert) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	a.stop()

	uuids := make([]ble.UUID, len(ad.Uuids))
	for i, u := range ad.Uuids {
		uuids[i] = BllUuidFromUuid(u)
	}

	if !ad.Connectable() {
		log.Debugf("Platform advertiser cannot suppress connections; " +
			"discovery advert will be connectable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		err := a.dev.AdvertiseNameAndServices(ctx, "", uuids...)
		if err != nil && ctx.Err() == nil {
			log.Warnf("Advertising stopped: %s", err.Error())
		}
	}()

	a.cancel = cancel
	a.done = done
	return nil
}

func (a *Advertiser) StopAdvertising() error {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	a.stop()
	return nil
}
