package jsonrpc

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a store for an unknown operation hash
var ErrNotFound = errors.New("not found")

type Error interface {
	Error() string
	ErrorCode() int
}

// dataError is an Error carrying a structured payload in the response
type dataError interface {
	Error
	ErrorData() interface{}
}

type invalidParamsError struct {
	err string
}

func (e *invalidParamsError) Error() string {
	return e.err
}

func (e *invalidParamsError) ErrorCode() int {
	return -32602
}

func NewInvalidParamsError(msg string) *invalidParamsError {
	return &invalidParamsError{err: msg}
}

type invalidRequestError struct {
	err string
}

func (e *invalidRequestError) Error() string {
	return e.err
}

func (e *invalidRequestError) ErrorCode() int {
	return -32600
}

func NewInvalidRequestError(msg string) *invalidRequestError {
	return &invalidRequestError{err: msg}
}

type methodNotFoundError struct {
	method string
}

func (e *methodNotFoundError) Error() string {
	return fmt.Sprintf("the method %s does not exist/is not available", e.method)
}

func (e *methodNotFoundError) ErrorCode() int {
	return -32601
}

func NewMethodNotFoundError(method string) *methodNotFoundError {
	return &methodNotFoundError{method: method}
}

type internalError struct {
	err string
}

func (e *internalError) Error() string {
	return e.err
}

func (e *internalError) ErrorCode() int {
	return -32603
}

func NewInternalError(msg string) *internalError {
	return &internalError{err: msg}
}

// RejectedOperationCode is returned when the ledger refuses an operation
const RejectedOperationCode = -32010

// RejectedOperationData is the error payload of a rejected operation
type RejectedOperationData struct {
	Kind string `json:"kind"`
}

type rejectedOperationError struct {
	kind string
	err  string
}

func (e *rejectedOperationError) Error() string {
	return e.err
}

func (e *rejectedOperationError) ErrorCode() int {
	return RejectedOperationCode
}

func (e *rejectedOperationError) ErrorData() interface{} {
	return &RejectedOperationData{Kind: e.kind}
}

func NewRejectedOperationError(kind, msg string) *rejectedOperationError {
	return &rejectedOperationError{kind: kind, err: msg}
}
