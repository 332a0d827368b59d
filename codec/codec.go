// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package codec provides a single CBOR-plus-zstandard encoding used
// throughout the store package: Marshal produces a compressed, canonical
// encoding of any value; Unmarshal reverses it.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Codec encodes values with CBOR and compresses the result with zstandard.
type Codec struct {
	encoder cbor.EncMode
	decoder cbor.DecMode
}

// New creates a Codec with canonical CBOR encoding, so that two calls with
// equal values always produce byte-identical output.
func New() (*Codec, error) {
	encOptions := cbor.CanonicalEncOptions()
	encoder, err := encOptions.EncMode()
	if err != nil {
		return nil, fmt.Errorf("could not build cbor encoder: %w", err)
	}

	decOptions := cbor.DecOptions{ExtraReturnErrors: cbor.ExtraDecErrorUnknownField}
	decoder, err := decOptions.DecMode()
	if err != nil {
		return nil, fmt.Errorf("could not build cbor decoder: %w", err)
	}

	return &Codec{encoder: encoder, decoder: decoder}, nil
}

// Marshal encodes value as CBOR and compresses the result.
func (c *Codec) Marshal(value interface{}) ([]byte, error) {
	data, err := c.encoder.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("could not encode value: %w", err)
	}

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("could not create compressor: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("could not compress value: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("could not flush compressor: %w", err)
	}

	return buf.Bytes(), nil
}

// Unmarshal decompresses compressed and decodes the result into value,
// which must be a pointer.
func (c *Codec) Unmarshal(compressed []byte, value interface{}) error {
	zr, err := zstd.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("could not create decompressor: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("could not decompress value: %w", err)
	}

	if err := c.decoder.Unmarshal(data, value); err != nil {
		return fmt.Errorf("could not decode value: %w", err)
	}
	return nil
}
