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

package config

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/structs"
	"github.com/joaojeronimo/go-crc16"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

const STATE_VERSION = 1

const stateCrcLen = 2

type stateRecord struct {
	Version   int    `codec:"version"`
	State     []byte `codec:"state"`
	SavedUnix int64  `codec:"saved_unix"`
}

type StateInfo struct {
	Version int
	Len     int
	Saved   time.Time
}

// StateStore keeps the engine's persisted state in a single file: a CBOR map
// followed by a big-endian CRC16 of the map.
type StateStore struct {
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{
		path: path,
	}
}

func (ss *StateStore) Path() string {
	return ss.path
}

func encodeState(state []byte, now time.Time) ([]byte, error) {
	rec := stateRecord{
		Version:   STATE_VERSION,
		State:     state,
		SavedUnix: now.Unix(),
	}

	// Convert record struct to map, use "codec" tag which is compatible with
	// "structs"
	s := structs.New(rec)
	s.TagName = "codec"
	m := s.Map()

	b := []byte{}
	enc := codec.NewEncoderBytes(&b, new(codec.CborHandle))
	if err := enc.Encode(m); err != nil {
		return nil, err
	}

	crc := make([]byte, stateCrcLen)
	binary.BigEndian.PutUint16(crc, crc16.Crc16(b))

	return append(b, crc...), nil
}

func decodeState(b []byte) (stateRecord, error) {
	rec := stateRecord{}

	if len(b) <= stateCrcLen {
		return rec, errors.Errorf("state file too short (%d bytes)", len(b))
	}

	// A trailing CRC makes the CRC of the whole buffer zero.
	if crc16.Crc16(b) != 0 {
		return rec, errors.New("state file CRC mismatch")
	}

	body := b[:len(b)-stateCrcLen]
	dec := codec.NewDecoderBytes(body, new(codec.CborHandle))
	if err := dec.Decode(&rec); err != nil {
		return rec, errors.Wrap(err, "invalid state record")
	}

	if rec.Version != STATE_VERSION {
		return rec, errors.Errorf("unsupported state version %d",
			rec.Version)
	}

	return rec, nil
}

// SaveState atomically replaces the stored state.
func (ss *StateStore) SaveState(state []byte) error {
	b, err := encodeState(state, time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to encode state")
	}

	dir := filepath.Dir(ss.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	f, err := ioutil.TempFile(dir, ".state-")
	if err != nil {
		return errors.Wrap(err, "failed to create state file")
	}
	tmp := f.Name()

	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to write %s", tmp)
	}

	if err := os.Rename(tmp, ss.path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "failed to replace %s", ss.path)
	}

	log.Debugf("Saved %d bytes of engine state to %s", len(state), ss.path)
	return nil
}

func (ss *StateStore) read() (*stateRecord, error) {
	b, err := ioutil.ReadFile(ss.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", ss.path)
	}

	rec, err := decodeState(b)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", ss.path)
	}

	return &rec, nil
}

// Load returns the stored state, or nil if nothing has been saved.
func (ss *StateStore) Load() ([]byte, error) {
	rec, err := ss.read()
	if err != nil || rec == nil {
		return nil, err
	}

	if rec.State == nil {
		return []byte{}, nil
	}
	return rec.State, nil
}

// Info describes the stored state.  ok is false if nothing has been saved.
func (ss *StateStore) Info() (info StateInfo, ok bool, err error) {
	rec, err := ss.read()
	if err != nil || rec == nil {
		return info, false, err
	}

	info = StateInfo{
		Version: rec.Version,
		Len:     len(rec.State),
		Saved:   time.Unix(rec.SavedUnix, 0),
	}
	return info, true, nil
}

func (ss *StateStore) Clear() error {
	if err := os.Remove(ss.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to remove %s", ss.path)
	}

	return nil
}
