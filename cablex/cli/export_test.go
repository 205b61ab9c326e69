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

package cli

import (
	"testing"
)

func TestParseDiscoveryPayload(t *testing.T) {
	p, err := parseDiscoveryPayload("000102030405060708090a0b0c0d0e0f10111213")
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range p {
		if int(b) != i {
			t.Fatalf("byte %d = 0x%02x", i, b)
		}
	}

	p, err = parseDiscoveryPayload(
		"00:01:02:03:04:05:06:07:08:09:0a:0b:0c:0d:0e:0f:10:11:12:13")
	if err != nil || p[19] != 0x13 {
		t.Errorf("colon-separated payload: %x, %v", p, err)
	}

	for _, s := range []string{"", "0001", "zz0102030405060708090a0b0c0d0e0f101112",
		"000102030405060708090a0b0c0d0e0f1011121314"} {

		if _, err := parseDiscoveryPayload(s); err == nil {
			t.Errorf("payload %q accepted", s)
		}
	}
}
