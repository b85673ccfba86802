/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed page.schema.json
var pageSchemaJSON []byte

var (
	pageSchemaOnce sync.Once
	pageSchema     *gojsonschema.Schema
	pageSchemaErr  error
)

// SchemaError lists the reasons a page document was rejected.
type SchemaError struct {
	Issues []string
}

func (e *SchemaError) Error() string {
	return "page does not conform to schema: " + strings.Join(e.Issues, "; ")
}

// Validate checks a page.json document against the embedded page schema.
func Validate(data []byte) error {
	pageSchemaOnce.Do(func() {
		pageSchema, pageSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(pageSchemaJSON))
	})
	if pageSchemaErr != nil {
		return fmt.Errorf("compile page schema: %w", pageSchemaErr)
	}
	res, err := pageSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validate page: %w", err)
	}
	if res.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, e := range res.Errors() {
		se.Issues = append(se.Issues, e.String())
	}
	return se
}
