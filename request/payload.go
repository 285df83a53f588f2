// Copyright 2021 The httpq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"fmt"
	"io"
	"net/url"

	"github.com/google/go-querystring/query"
)

const badPayloadTypeMsg = "httpq/request: invalid payload type (use nil, " +
	"string, []byte, io.Reader, Values, url.Values, map[string]interface{} " +
	"or a struct)"

// encodePayload converts a generic payload into bytes. The form result
// reports whether the bytes are an application/x-www-form-urlencoded
// encoding, which a GET request carries in its URL query instead of a
// body.
//
// • nil yields no bytes.
//
// • []byte and string are used as-is.
//
// • io.Reader is read to the end and closed if it is an io.Closer.
//
// • Values, url.Values and map[string]interface{} are form-encoded.
//
// • Any other value is handed to go-querystring, which accepts structs
// and struct pointers; anything else is an error.
func encodePayload(payload interface{}) (data []byte, form bool, err error) {
	switch x := payload.(type) {
	case nil:
		return nil, false, nil
	case string:
		return []byte(x), false, nil
	case []byte:
		return x, false, nil
	case io.ReadCloser:
		b, err := io.ReadAll(x)
		if err != nil {
			return nil, false, err
		}
		err = x.Close()
		if err != nil {
			return nil, false, err
		}
		return b, false, nil
	case io.Reader:
		return encodePayload(io.NopCloser(x))
	case Values:
		return []byte(x.Encode()), true, nil
	case map[string]interface{}:
		return []byte(FromMap(x).Encode()), true, nil
	case url.Values:
		return []byte(x.Encode()), true, nil
	default:
		v, err := query.Values(x)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", badPayloadTypeMsg, err)
		}
		return []byte(v.Encode()), true, nil
	}
}
