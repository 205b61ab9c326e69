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
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cast"

	"mynewt.apache.org/newt/util"
)

func einvalConnString(f string, args ...interface{}) error {
	suffix := fmt.Sprintf(f, args...)
	return util.FmtNewtError("Invalid connstring; %s", suffix)
}

// ApplyConnString overrides settings with comma-separated key=value pairs.
// The config is left untouched if the string is invalid.
func ApplyConnString(c *Config, cs string) error {
	if strings.TrimSpace(cs) == "" {
		return nil
	}

	nc := *c

	parts := strings.Split(cs, ",")
	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return einvalConnString("expected comma-separated "+
				"key=value pairs; no '=' in: %s", p)
		}

		k := strings.TrimSpace(kv[0])
		v := strings.TrimSpace(kv[1])

		var err error
		switch k {
		case "ctlr_name":
			nc.Controller = v

		case "adv_itvl_min":
			nc.AdvItvlMin, err = cast.ToUint16E(v)
			if err != nil {
				return einvalConnString("Invalid adv_itvl_min: %s", v)
			}

		case "adv_itvl_max":
			nc.AdvItvlMax, err = cast.ToUint16E(v)
			if err != nil {
				return einvalConnString("Invalid adv_itvl_max: %s", v)
			}

		case "session_cap":
			nc.SesnCap, err = cast.ToIntE(v)
			if err != nil {
				return einvalConnString("Invalid session_cap: %s", v)
			}

		case "state_file":
			nc.StateFile, err = homedir.Expand(v)
			if err != nil {
				return einvalConnString("Invalid state_file: %s", v)
			}

		default:
			return einvalConnString("Unrecognized key: %s", k)
		}
	}

	if err := nc.Validate(); err != nil {
		return err
	}

	*c = nc
	return nil
}
