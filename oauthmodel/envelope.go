package oauthmodel

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// DecodeData unwraps the platform envelope and decodes its data field into out.
// Bodies that are not wrapped in an envelope are decoded directly.
func DecodeData(body []byte, out any) error {
	var envelope DataResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errors.Wrap(err, "oauthmodel.DecodeData envelope")
	}
	if envelope.Failed() {
		return errors.Wrap(ErrEnvelopeFailed, envelope.Message)
	}

	data := envelope.Data
	if len(data) == 0 && envelope.HTTPCode == 0 && envelope.Success == nil {
		// not an envelope
		data = body
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrEmptyEnvelope
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "oauthmodel.DecodeData data")
	}
	return nil
}
