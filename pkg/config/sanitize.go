/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"reflect"
	"strings"
)

const redactedValue = "[redacted]"

// Redacted renders cfg as a map keyed by json names, with every non-empty field
// tagged `sensitive:"true"` replaced. Nil sections are omitted. It is meant for logging.
func Redacted(cfg interface{}) map[string]interface{} {
	v := reflect.ValueOf(cfg)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil
	}

	return redactStruct(v)
}

func redactStruct(v reflect.Value) map[string]interface{} {
	t := v.Type()
	out := make(map[string]interface{}, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		if name == "" {
			name = field.Name
		}

		value := v.Field(i)

		if field.Tag.Get("sensitive") == "true" {
			if !value.IsZero() {
				out[name] = redactedValue
			}

			continue
		}

		if value.Kind() == reflect.Ptr {
			if value.IsNil() {
				continue
			}

			value = value.Elem()
		}

		// time.Time is a struct but logs as a value
		if value.Kind() == reflect.Struct && value.Type().PkgPath() != "time" {
			out[name] = redactStruct(value)

			continue
		}

		out[name] = value.Interface()
	}

	return out
}
