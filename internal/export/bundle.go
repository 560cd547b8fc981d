/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"geoproof/internal/model"
	"geoproof/internal/version"
)

// Manifest describes the contents of a proof bundle.
type Manifest struct {
	Name      string   `json:"name"`
	Steps     int      `json:"steps"`
	Images    []string `json:"images"`
	Generator string   `json:"generator"`
}

// WriteBundle packages a proof as a ZIP archive: the geometry description
// (document.json), the annotated text (text.html), one PNG per step under
// steps/, and manifest.json listing them.
func WriteBundle(w io.Writer, name string, m *model.Model, opt PNGOptions) error {
	zw := zip.NewWriter(w)

	doc, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := addZipFile(zw, "document.json", doc); err != nil {
		return fmt.Errorf("zip add document: %w", err)
	}
	if err := addZipFile(zw, "text.html", []byte(m.Text())); err != nil {
		return fmt.Errorf("zip add text: %w", err)
	}

	pad := len(fmt.Sprint(m.StepCount()))
	man := Manifest{Name: name, Steps: m.StepCount(), Generator: "geoproof " + version.String()}
	imgBuf := &bytes.Buffer{}
	for step := 0; step < m.StepCount(); step++ {
		imgBuf.Reset()
		if _, err := RenderStepPNG(m, step, opt, imgBuf); err != nil {
			return err
		}
		file := fmt.Sprintf("steps/%0*d.png", pad, step+1)
		if err := addZipFile(zw, file, imgBuf.Bytes()); err != nil {
			return fmt.Errorf("zip add image: %w", err)
		}
		man.Images = append(man.Images, file)
	}

	raw, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(zw, "manifest.json", raw); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
