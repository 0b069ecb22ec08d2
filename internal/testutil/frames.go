package testutil

import (
	"encoding/json"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/ag-ui/a2ui-go/pkg/encoding"
)

func response(result string) []byte {
	raw := json.RawMessage(result)
	resp := &jsonrpc2.Response{ID: jsonrpc2.ID{Str: "stream", IsString: true}, Result: &raw}
	data, err := encoding.Marshal(resp)
	if err != nil {
		panic(err)
	}
	return data
}

// EventFrame wraps an A2UI message, or array of messages, in an event result.
func EventFrame(data string) []byte {
	return response(`{"kind":"event","data":` + data + `}`)
}

// TaskFrame reports a task state.
func TaskFrame(taskID, state string) []byte {
	return response(`{"kind":"task","id":"` + taskID + `","status":{"state":"` + state + `"}}`)
}

// ErrorFrame is a JSON-RPC error response.
func ErrorFrame(code int64, message string) []byte {
	resp := &jsonrpc2.Response{
		ID:    jsonrpc2.ID{Str: "stream", IsString: true},
		Error: &jsonrpc2.Error{Code: code, Message: message},
	}
	data, err := encoding.Marshal(resp)
	if err != nil {
		panic(err)
	}
	return data
}
