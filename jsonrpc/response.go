package jsonrpc

import (
	"encoding/json"
)

// Request is a jsonrpc request
type Request struct {
	ID     interface{}     `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is a jsonrpc response interface
type Response interface {
	GetID() interface{}
	Data() json.RawMessage
	Bytes() ([]byte, error)
}

// ErrorResponse is a jsonrpc error response
type ErrorResponse struct {
	JSONRPC string       `json:"jsonrpc"`
	ID      interface{}  `json:"id,omitempty"`
	Error   *ObjectError `json:"error"`
}

// GetID returns error response id
func (e *ErrorResponse) GetID() interface{} {
	return e.ID
}

// Data returns ObjectError
func (e *ErrorResponse) Data() json.RawMessage {
	data, err := json.Marshal(e.Error)
	if err != nil {
		return json.RawMessage(err.Error())
	}

	return data
}

// Bytes return the serialized response
func (e *ErrorResponse) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// SuccessResponse is a jsonrpc success response
type SuccessResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *ObjectError    `json:"error,omitempty"`
}

// GetID returns success response id
func (s *SuccessResponse) GetID() interface{} {
	return s.ID
}

// Data returns the result
func (s *SuccessResponse) Data() json.RawMessage {
	if s.Result != nil {
		return s.Result
	}

	return json.RawMessage("null")
}

// Bytes return the serialized response
func (s *SuccessResponse) Bytes() ([]byte, error) {
	return json.Marshal(s)
}

// ObjectError is a jsonrpc error
type ObjectError struct {
	// Code is the error code
	Code int `json:"code"`

	// Message is the error message
	Message string `json:"message"`

	// Data is the error payload
	Data interface{} `json:"data,omitempty"`
}

// Error implements error interface
func (e *ObjectError) Error() string {
	data, err := json.Marshal(e)
	if err != nil {
		return "jsonrpc.internal marshal error: " + err.Error()
	}

	return string(data)
}

// NewRPCErrorResponse is used to create a custom error response
func NewRPCErrorResponse(id interface{}, jsonrpcver string, err Error) Response {
	errObject := &ObjectError{Code: err.ErrorCode(), Message: err.Error()}
	if withData, ok := err.(dataError); ok {
		errObject.Data = withData.ErrorData()
	}

	return &ErrorResponse{
		JSONRPC: jsonrpcver,
		ID:      id,
		Error:   errObject,
	}
}

// NewRPCResponse returns Success/Error response object
func NewRPCResponse(id interface{}, jsonrpcver string, reply []byte, err Error) Response {
	if err != nil {
		return NewRPCErrorResponse(id, jsonrpcver, err)
	}

	return &SuccessResponse{
		JSONRPC: jsonrpcver,
		ID:      id,
		Result:  reply,
	}
}
