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

package bledefs

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const BLE_ATT_ATTR_MAX_LEN = 512

const BLE_ATT_MTU_DFLT = 23

// Fixed per-operation ATT overhead: opcode + attribute handle.
const BLE_ATT_HDR_LEN = 3

// Bluetooth SIG base UUID: 0000xxxx-0000-1000-8000-00805f9b34fb.
const BLE_UUID_BASE_MSB_LO = 0x1000
const BLE_UUID_BASE_LSB = 0x800000805f9b34fb

type BleAddr struct {
	Bytes [6]byte
}

func ParseBleAddr(s string) (BleAddr, error) {
	ba := BleAddr{}

	toks := strings.Split(strings.ToLower(s), ":")
	if len(toks) != 6 {
		return ba, fmt.Errorf("invalid BLE addr string: %s", s)
	}

	for i, t := range toks {
		u64, err := strconv.ParseUint(t, 16, 8)
		if err != nil {
			return ba, err
		}
		ba.Bytes[i] = byte(u64)
	}

	return ba, nil
}

func (ba *BleAddr) String() string {
	var buf bytes.Buffer
	buf.Grow(len(ba.Bytes) * 3)

	for i, b := range ba.Bytes {
		if i != 0 {
			buf.WriteString(":")
		}
		fmt.Fprintf(&buf, "%02x", b)
	}

	return buf.String()
}

func (ba *BleAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(ba.String())
}

func (ba *BleAddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*ba, err = ParseBleAddr(s)
	if err != nil {
		return err
	}

	return nil
}

// AddrToId packs a link-layer address into a client id.  The first address
// byte (as written in the colon-separated form) is the most significant.
func AddrToId(ba BleAddr) uint64 {
	var id uint64
	for _, b := range ba.Bytes {
		id = id<<8 | uint64(b)
	}
	return id
}

// IdToAddr is the inverse of AddrToId.  Only the low 48 bits of the id are
// significant.
func IdToAddr(id uint64) BleAddr {
	var ba BleAddr
	for i := len(ba.Bytes) - 1; i >= 0; i-- {
		ba.Bytes[i] = byte(id)
		id >>= 8
	}
	return ba
}

type BleUuid16 uint16

func (bu16 *BleUuid16) String() string {
	return fmt.Sprintf("0x%04x", *bu16)
}

func ParseUuid16(s string) (BleUuid16, error) {
	val, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return BleUuid16(0), fmt.Errorf("Invalid UUID: %s", s)
	}

	return BleUuid16(val), nil
}

// Bytes are stored in the order they are written in the textual form.
type BleUuid128 [16]byte

func (bu128 *BleUuid128) String() string {
	var buf bytes.Buffer
	buf.Grow(len(bu128)*2 + 3)

	for i, b := range bu128 {
		switch i {
		case 4, 6, 8, 10:
			buf.WriteString("-")
		}

		fmt.Fprintf(&buf, "%02x", b)
	}

	return buf.String()
}

func ParseUuid128(s string) (BleUuid128, error) {
	var bu128 BleUuid128

	if len(s) != 36 {
		return bu128, fmt.Errorf("Invalid UUID: %s", s)
	}

	boff := 0
	for i := 0; i < 36; {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return bu128, fmt.Errorf("Invalid UUID: %s", s)
			}
			i++

		default:
			u64, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return bu128, fmt.Errorf("Invalid UUID: %s", s)
			}
			bu128[boff] = byte(u64)
			i += 2
			boff++
		}
	}

	return bu128, nil
}

// Uuid128FromHalves builds a UUID from its most and least significant 64-bit
// halves.
func Uuid128FromHalves(msb uint64, lsb uint64) BleUuid128 {
	var bu128 BleUuid128
	binary.BigEndian.PutUint64(bu128[:8], msb)
	binary.BigEndian.PutUint64(bu128[8:], lsb)
	return bu128
}

func (bu128 *BleUuid128) Halves() (uint64, uint64) {
	return binary.BigEndian.Uint64(bu128[:8]),
		binary.BigEndian.Uint64(bu128[8:])
}

// Uuid128FromShort expands a 16- or 32-bit SIG UUID into its full form.
func Uuid128FromShort(short uint32) BleUuid128 {
	return Uuid128FromHalves(uint64(short)<<32|BLE_UUID_BASE_MSB_LO,
		BLE_UUID_BASE_LSB)
}

// ShortForm reports whether the UUID is built on the SIG base and, if so,
// returns its 32-bit short value.
func (bu128 *BleUuid128) ShortForm() (uint32, bool) {
	msb, lsb := bu128.Halves()
	if lsb != BLE_UUID_BASE_LSB || msb&0xffffffff != BLE_UUID_BASE_MSB_LO {
		return 0, false
	}

	return uint32(msb >> 32), true
}

func (bu128 *BleUuid128) MarshalJSON() ([]byte, error) {
	return json.Marshal(bu128.String())
}

func (bu128 *BleUuid128) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*bu128, err = ParseUuid128(s)
	if err != nil {
		return err
	}

	return nil
}

type BleUuid struct {
	// Set to 0 if the 128-bit UUID should be used.
	U16 BleUuid16

	// Set to nil if the 16-bit UUID should be used.
	U128 BleUuid128
}

func (bu *BleUuid) String() string {
	if bu.U16 != 0 {
		return bu.U16.String()
	} else {
		return bu.U128.String()
	}
}

// Full returns the 128-bit form of the UUID.
func (bu *BleUuid) Full() BleUuid128 {
	if bu.U16 != 0 {
		return Uuid128FromShort(uint32(bu.U16))
	}
	return bu.U128
}

func ParseUuid(uuidStr string) (BleUuid, error) {
	bu := BleUuid{}
	var err error

	// First, try to parse as a 16-bit UUID.
	bu.U16, err = ParseUuid16(uuidStr)
	if err == nil {
		return bu, nil
	}

	// Try to parse as a 128-bit UUID.
	bu.U128, err = ParseUuid128(uuidStr)
	if err == nil {
		return bu, nil
	}

	return bu, err
}

func MustParseUuid(uuidStr string) BleUuid {
	bu, err := ParseUuid(uuidStr)
	if err != nil {
		panic(err.Error())
	}
	return bu
}

func (bu *BleUuid) MarshalJSON() ([]byte, error) {
	if bu.U16 != 0 {
		return json.Marshal(bu.U16)
	} else {
		return json.Marshal(bu.U128.String())
	}
}

func (bu *BleUuid) UnmarshalJSON(data []byte) error {
	var err error

	// If the value is a string, try to parse a UUID from it. */
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*bu, err = ParseUuid(s)
		return err
	}

	// Not a string; maybe it's a raw 16-bit number.
	if err = json.Unmarshal(data, &bu.U16); err != nil {
		return err
	}

	return nil
}

// CompareUuids orders UUIDs by their full 128-bit form, so a 16-bit UUID and
// its expanded equivalent compare equal.
func CompareUuids(a BleUuid, b BleUuid) int {
	if a.U16 != 0 && b.U16 != 0 {
		return int(a.U16) - int(b.U16)
	}

	af := a.Full()
	bf := b.Full()
	return bytes.Compare(af[:], bf[:])
}

type BleAdvConnMode int

const (
	BLE_ADV_CONN_MODE_NON BleAdvConnMode = iota
	BLE_ADV_CONN_MODE_DIR
	BLE_ADV_CONN_MODE_UND
)

var BleAdvConnModeStringMap = map[BleAdvConnMode]string{
	BLE_ADV_CONN_MODE_NON: "non",
	BLE_ADV_CONN_MODE_DIR: "dir",
	BLE_ADV_CONN_MODE_UND: "und",
}

func BleAdvConnModeToString(connMode BleAdvConnMode) string {
	s := BleAdvConnModeStringMap[connMode]
	if s == "" {
		return "???"
	}

	return s
}

func BleAdvConnModeFromString(s string) (BleAdvConnMode, error) {
	for advConnMode, name := range BleAdvConnModeStringMap {
		if s == name {
			return advConnMode, nil
		}
	}

	return BleAdvConnMode(0),
		fmt.Errorf("Invalid BleAdvConnMode string: %s", s)
}

func (a BleAdvConnMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(BleAdvConnModeToString(a))
}

func (a *BleAdvConnMode) UnmarshalJSON(data []byte) error {
	var err error

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*a, err = BleAdvConnModeFromString(s)
	return err
}

type BleGattOp int

const (
	BLE_GATT_ACCESS_OP_READ_CHR  BleGattOp = 0
	BLE_GATT_ACCESS_OP_WRITE_CHR           = 1
	BLE_GATT_ACCESS_OP_READ_DSC            = 2
	BLE_GATT_ACCESS_OP_WRITE_DSC           = 3
)

var BleGattOpStringMap = map[BleGattOp]string{
	BLE_GATT_ACCESS_OP_READ_CHR:  "read_chr",
	BLE_GATT_ACCESS_OP_WRITE_CHR: "write_chr",
	BLE_GATT_ACCESS_OP_READ_DSC:  "read_dsc",
	BLE_GATT_ACCESS_OP_WRITE_DSC: "write_dsc",
}

func BleGattOpToString(op BleGattOp) string {
	s := BleGattOpStringMap[op]
	if s == "" {
		return "???"
	}

	return s
}

func BleGattOpFromString(s string) (BleGattOp, error) {
	for op, name := range BleGattOpStringMap {
		if s == name {
			return op, nil
		}
	}

	return BleGattOp(0),
		fmt.Errorf("Invalid BleGattOp string: %s", s)
}

// ATT error codes (Bluetooth Core Vol 3, Part F, 3.4.1.1).
const (
	BLE_ATT_ERR_NONE              uint8 = 0x00
	BLE_ATT_ERR_INVALID_HANDLE          = 0x01
	BLE_ATT_ERR_READ_NOT_PERMITTED      = 0x02
	BLE_ATT_ERR_WRITE_NOT_PERMITTED     = 0x03
	BLE_ATT_ERR_INVALID_PDU             = 0x04
	BLE_ATT_ERR_REQ_NOT_SUPPORTED       = 0x06
	BLE_ATT_ERR_INVALID_OFFSET          = 0x07
	BLE_ATT_ERR_ATTR_NOT_FOUND          = 0x0a
	BLE_ATT_ERR_INVALID_ATTR_VALUE_LEN  = 0x0d
	BLE_ATT_ERR_UNLIKELY                = 0x0e
	BLE_ATT_ERR_INSUFFICIENT_RES        = 0x11
	BLE_ATT_ERR_CCCD_IMPROPER           = 0xfd
)

var BleAttErrStringMap = map[uint8]string{
	BLE_ATT_ERR_NONE:                   "none",
	BLE_ATT_ERR_INVALID_HANDLE:         "invalid_handle",
	BLE_ATT_ERR_READ_NOT_PERMITTED:     "read_not_permitted",
	BLE_ATT_ERR_WRITE_NOT_PERMITTED:    "write_not_permitted",
	BLE_ATT_ERR_INVALID_PDU:            "invalid_pdu",
	BLE_ATT_ERR_REQ_NOT_SUPPORTED:      "req_not_supported",
	BLE_ATT_ERR_INVALID_OFFSET:         "invalid_offset",
	BLE_ATT_ERR_ATTR_NOT_FOUND:         "attr_not_found",
	BLE_ATT_ERR_INVALID_ATTR_VALUE_LEN: "invalid_attr_value_len",
	BLE_ATT_ERR_UNLIKELY:               "unlikely",
	BLE_ATT_ERR_INSUFFICIENT_RES:       "insufficient_resources",
	BLE_ATT_ERR_CCCD_IMPROPER:          "cccd_improper",
}

func BleAttErrToString(status uint8) string {
	s := BleAttErrStringMap[status]
	if s == "" {
		return fmt.Sprintf("0x%02x", status)
	}

	return s
}

// Client characteristic configuration descriptor.
const BLE_UUID16_CCCD BleUuid16 = 0x2902

const (
	BLE_CCCD_DISABLED     uint16 = 0x0000
	BLE_CCCD_NOTIFY                = 0x0001
	BLE_CCCD_INDICATE              = 0x0002
	BLE_CCCD_VALUE_LEN             = 2
)

type BleSvcType int

const (
	BLE_SVC_TYPE_PRIMARY BleSvcType = iota
	BLE_SVC_TYPE_SECONDARY
)

var BleSvcTypeStringMap = map[BleSvcType]string{
	BLE_SVC_TYPE_PRIMARY:   "primary",
	BLE_SVC_TYPE_SECONDARY: "secondary",
}

func BleSvcTypeToString(svcType BleSvcType) string {
	s := BleSvcTypeStringMap[svcType]
	if s == "" {
		return "???"
	}

	return s
}

type BleChrFlags int

const (
	BLE_GATT_F_BROADCAST       BleChrFlags = 0x0001
	BLE_GATT_F_READ                        = 0x0002
	BLE_GATT_F_WRITE_NO_RSP                = 0x0004
	BLE_GATT_F_WRITE                       = 0x0008
	BLE_GATT_F_NOTIFY                      = 0x0010
	BLE_GATT_F_INDICATE                    = 0x0020
	BLE_GATT_F_AUTH_SIGN_WRITE             = 0x0040
	BLE_GATT_F_RELIABLE_WRITE              = 0x0080
	BLE_GATT_F_AUX_WRITE                   = 0x0100
	BLE_GATT_F_READ_ENC                    = 0x0200
	BLE_GATT_F_READ_AUTHEN                 = 0x0400
	BLE_GATT_F_READ_AUTHOR                 = 0x0800
	BLE_GATT_F_WRITE_ENC                   = 0x1000
	BLE_GATT_F_WRITE_AUTHEN                = 0x2000
	BLE_GATT_F_WRITE_AUTHOR                = 0x4000
)

type BleAttFlags int

const (
	BLE_ATT_F_READ         BleAttFlags = 0x01
	BLE_ATT_F_WRITE                    = 0x02
	BLE_ATT_F_READ_ENC                 = 0x04
	BLE_ATT_F_READ_AUTHEN              = 0x08
	BLE_ATT_F_READ_AUTHOR              = 0x10
	BLE_ATT_F_WRITE_ENC                = 0x20
	BLE_ATT_F_WRITE_AUTHEN             = 0x40
	BLE_ATT_F_WRITE_AUTHOR             = 0x80
)

// A single read or write of a characteristic or descriptor, as reported by
// the BLE stack.
type BleGattAccess struct {
	Op      BleGattOp
	Addr    BleAddr
	SvcUuid BleUuid
	ChrUuid BleUuid

	// Only set for descriptor accesses.
	DscUuid BleUuid

	Offset int
	Data   []byte
}

func (a *BleGattAccess) String() string {
	s := fmt.Sprintf("op=%s addr=%s chr=%s offset=%d len=%d",
		BleGattOpToString(a.Op), a.Addr.String(), a.ChrUuid.String(),
		a.Offset, len(a.Data))

	switch a.Op {
	case BLE_GATT_ACCESS_OP_READ_DSC, BLE_GATT_ACCESS_OP_WRITE_DSC:
		s += " dsc=" + a.DscUuid.String()
	}

	return s
}

// Returns an ATT status code and, for reads, the attribute value.
type BleGattAccessFn func(access BleGattAccess) (uint8, []byte)

type BleDsc struct {
	Uuid       BleUuid
	AttFlags   BleAttFlags
	MinKeySize int
	AccessCb   BleGattAccessFn
}

type BleChr struct {
	Uuid       BleUuid
	Flags      BleChrFlags
	MinKeySize int
	AccessCb   BleGattAccessFn
	Dscs       []BleDsc
}

type BleSvc struct {
	Uuid    BleUuid
	SvcType BleSvcType
	Chrs    []BleChr
}
