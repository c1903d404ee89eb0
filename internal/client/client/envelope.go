package client

import (
	"bytes"
	"encoding/json"
)

// envelope is the decoded form of a response body. When the body carried a
// "success" key it was the wrapped form and Success/Message/Data come from
// it; otherwise Data is the whole body.
type envelope struct {
	Wrapped   bool
	Success   *bool
	Message   string
	Data      json.RawMessage
	Timestamp string
}

// Failed reports an explicit success:false.
func (e envelope) Failed() bool {
	return e.Success != nil && !*e.Success
}

type wrappedBody struct {
	Success   *bool           `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}

func decodeEnvelope(body []byte) envelope {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return envelope{}
	}

	if body[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err == nil {
			if _, ok := fields["success"]; ok {
				var w wrappedBody
				if err := json.Unmarshal(body, &w); err == nil {
					return envelope{Wrapped: true, Success: w.Success, Message: w.Message, Data: w.Data, Timestamp: w.Timestamp}
				}
			}
			return envelope{Data: body, Message: bareMessage(fields)}
		}
	}
	return envelope{Data: body}
}

// bareMessage picks an error text out of an unwrapped body such as
// {"message": "..."} or {"error": "..."}.
func bareMessage(fields map[string]json.RawMessage) string {
	for _, k := range []string{"message", "error"} {
		raw, ok := fields[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// decodeData unmarshals the data part into out. Empty or null data leaves
// out untouched.
func (e envelope) decodeData(out any) error {
	if out == nil || len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, out)
}
