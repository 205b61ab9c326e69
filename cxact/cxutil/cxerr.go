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

package cxutil

import (
	"fmt"
)

// Indicates the fragment pump was asked to start a second message for a
// client that still has one in flight.
type PumpBusyError struct {
	Text   string
	Client uint64
}

func NewPumpBusyError(client uint64, text string) *PumpBusyError {
	return &PumpBusyError{
		Text:   text,
		Client: client,
	}
}

func FmtPumpBusyError(client uint64, format string,
	args ...interface{}) *PumpBusyError {

	return NewPumpBusyError(client, fmt.Sprintf(format, args...))
}

func (e *PumpBusyError) Error() string {
	return e.Text
}

func IsPumpBusy(err error) bool {
	_, ok := err.(*PumpBusyError)
	return ok
}

// The protocol engine refused an inbound chunk.
type EngineRejectError struct {
	Text string
}

func NewEngineRejectError(text string) *EngineRejectError {
	return &EngineRejectError{
		Text: text,
	}
}

func (e *EngineRejectError) Error() string {
	return e.Text
}

func IsEngineReject(err error) bool {
	_, ok := err.(*EngineRejectError)
	return ok
}

// An operation arrived while the transport was not exporting.
type NotExportingError struct {
	Text string
}

func NewNotExportingError(text string) *NotExportingError {
	return &NotExportingError{
		Text: text,
	}
}

func (e *NotExportingError) Error() string {
	return e.Text
}

func IsNotExporting(err error) bool {
	_, ok := err.(*NotExportingError)
	return ok
}

// A write arrived from a device other than the one the export is bound to.
type UnboundPeerError struct {
	Text string
	Addr string
}

func NewUnboundPeerError(addr string, text string) *UnboundPeerError {
	return &UnboundPeerError{
		Text: text,
		Addr: addr,
	}
}

func (e *UnboundPeerError) Error() string {
	return e.Text
}

func IsUnboundPeer(err error) bool {
	_, ok := err.(*UnboundPeerError)
	return ok
}

// The BLE stack could not deliver a notification.
type NotifyError struct {
	Text string
}

func NewNotifyError(text string) *NotifyError {
	return &NotifyError{
		Text: text,
	}
}

func FmtNotifyError(format string, args ...interface{}) *NotifyError {
	return NewNotifyError(fmt.Sprintf(format, args...))
}

func (e *NotifyError) Error() string {
	return e.Text
}

func IsNotify(err error) bool {
	_, ok := err.(*NotifyError)
	return ok
}
