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
	"os"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorCausedBy(t *testing.T) {
	wrapped := errors.Wrapf(errors.Wrap(os.ErrNotExist, "open"), "load %s",
		"state")

	if !ErrorCausedBy(wrapped, os.ErrNotExist) {
		t.Errorf("wrapped cause not found")
	}
	if ErrorCausedBy(wrapped, os.ErrExist) {
		t.Errorf("unrelated cause found")
	}
	if ErrorCausedBy(fmt.Errorf("plain"), os.ErrNotExist) {
		t.Errorf("cause found in plain error")
	}
}
