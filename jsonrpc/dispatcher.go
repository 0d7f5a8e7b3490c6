package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/hashicorp/go-hclog"
)

type serviceData struct {
	sv      reflect.Value
	funcMap map[string]*funcData
}

type funcData struct {
	inNum int
	reqt  []reflect.Type
	fv    reflect.Value
}

func (f *funcData) numParams() int {
	return f.inNum - 1
}

type endpoints struct {
	AA   *AA
	Eth  *Eth
	Web3 *Web3
}

// Dispatcher handles all json rpc requests by delegating
// the execution flow to the corresponding service
type Dispatcher struct {
	logger     hclog.Logger
	metrics    *Metrics
	serviceMap map[string]*serviceData
	endpoints  endpoints

	chainID                 uint64
	jsonRPCBatchLengthLimit uint64
	receiptsLimit           uint64
}

func newDispatcher(
	logger hclog.Logger,
	metrics *Metrics,
	store JSONRPCStore,
	chainID uint64,
	jsonRPCBatchLengthLimit uint64,
	receiptsLimit uint64,
	namespaces []Namespace,
) *Dispatcher {
	d := &Dispatcher{
		logger:                  logger.Named("dispatcher"),
		metrics:                 NewDummyMetrics(metrics),
		chainID:                 chainID,
		jsonRPCBatchLengthLimit: jsonRPCBatchLengthLimit,
		receiptsLimit:           receiptsLimit,
	}

	d.registerEndpoints(store, namespaces)

	return d
}

func (d *Dispatcher) registerEndpoints(store JSONRPCStore, namespaces []Namespace) {
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces
	}

	d.endpoints.AA = &AA{
		store:         store,
		chainID:       d.chainID,
		receiptsLimit: d.receiptsLimit,
		metrics:       d.metrics,
	}
	d.endpoints.Eth = &Eth{store: store, chainID: d.chainID, metrics: d.metrics}
	d.endpoints.Web3 = &Web3{chainID: d.chainID, metrics: d.metrics}

	for _, namespace := range namespaces {
		switch namespace {
		case NamespaceAA:
			d.registerService(string(NamespaceAA), d.endpoints.AA)
		case NamespaceEth:
			d.registerService(string(NamespaceEth), d.endpoints.Eth)
		case NamespaceWeb3:
			d.registerService(string(NamespaceWeb3), d.endpoints.Web3)
		default:
			d.logger.Warn("unknown namespace", "namespace", namespace)
		}
	}
}

func (d *Dispatcher) getFnHandler(req Request) (*serviceData, *funcData, Error) {
	callName := strings.SplitN(req.Method, "_", 2)
	if len(callName) != 2 {
		return nil, nil, NewMethodNotFoundError(req.Method)
	}

	serviceName, funcName := callName[0], callName[1]

	service, ok := d.serviceMap[serviceName]
	if !ok {
		return nil, nil, NewMethodNotFoundError(req.Method)
	}

	fd, ok := service.funcMap[funcName]
	if !ok {
		return nil, nil, NewMethodNotFoundError(req.Method)
	}

	return service, fd, nil
}

// Handle handles a single request or a batch of them
func (d *Dispatcher) Handle(reqBody []byte) ([]byte, error) {
	x := bytes.TrimLeft(reqBody, " \t\r\n")
	if len(x) == 0 {
		return NewRPCResponse(nil, "2.0", nil, NewInvalidRequestError("Invalid json request")).Bytes()
	}

	if x[0] == '{' {
		var req Request
		if err := json.Unmarshal(reqBody, &req); err != nil {
			return NewRPCResponse(nil, "2.0", nil, NewInvalidRequestError("Invalid json request")).Bytes()
		}

		if req.Method == "" {
			return NewRPCResponse(req.ID, "2.0", nil, NewInvalidRequestError("invalid json request")).Bytes()
		}

		resp, err := d.handleReq(req)

		return NewRPCResponse(req.ID, "2.0", resp, err).Bytes()
	}

	// handle batch requests
	var requests []Request
	if err := json.Unmarshal(reqBody, &requests); err != nil {
		return NewRPCResponse(nil, "2.0", nil, NewInvalidRequestError("Invalid json request")).Bytes()
	}

	// avoid handling long batch requests unless disabled
	if d.jsonRPCBatchLengthLimit != 0 && len(requests) > int(d.jsonRPCBatchLengthLimit) {
		return NewRPCResponse(nil, "2.0", nil, NewInvalidRequestError("Batch request length too long")).Bytes()
	}

	responses := make([]Response, 0, len(requests))

	for _, req := range requests {
		resp, err := d.handleReq(req)
		responses = append(responses, NewRPCResponse(req.ID, "2.0", resp, err))
	}

	return json.Marshal(responses)
}

func (d *Dispatcher) handleReq(req Request) ([]byte, Error) {
	d.logger.Debug("request", "method", req.Method, "id", req.ID)

	service, fd, ferr := d.getFnHandler(req)
	if ferr != nil {
		return nil, ferr
	}

	inArgs := make([]reflect.Value, fd.inNum)
	inArgs[0] = service.sv

	inputs := make([]interface{}, fd.numParams())

	for i := 0; i < fd.inNum-1; i++ {
		val := reflect.New(fd.reqt[i+1])
		inputs[i] = val.Interface()
		inArgs[i+1] = val.Elem()
	}

	if fd.numParams() > 0 {
		if err := json.Unmarshal(req.Params, &inputs); err != nil {
			return nil, NewInvalidParamsError("Invalid Params")
		}
	}

	output := fd.fv.Call(inArgs)
	if err := getError(output[1]); err != nil {
		d.logInternalError(req.Method, err)

		if rpcErr, ok := err.(Error); ok {
			return nil, rpcErr
		}

		return nil, NewInvalidRequestError(err.Error())
	}

	var (
		data []byte
		err  error
	)

	if res := output[0].Interface(); res != nil {
		data, err = json.Marshal(res)
		if err != nil {
			d.logInternalError(req.Method, err)

			return nil, NewInternalError("Internal error")
		}
	}

	return data, nil
}

func (d *Dispatcher) logInternalError(method string, err error) {
	d.logger.Debug("failed to dispatch", "method", method, "err", err)
}

func (d *Dispatcher) registerService(serviceName string, service interface{}) {
	if d.serviceMap == nil {
		d.serviceMap = map[string]*serviceData{}
	}

	if serviceName == "" {
		panic("jsonrpc: serviceName cannot be empty")
	}

	st := reflect.TypeOf(service)
	if st.Kind() == reflect.Struct {
		panic(fmt.Sprintf("jsonrpc: service '%s' must be a pointer to struct", serviceName))
	}

	funcMap := make(map[string]*funcData)

	for i := 0; i < st.NumMethod(); i++ {
		mv := st.Method(i)
		if mv.PkgPath != "" {
			// skip unexported methods
			continue
		}

		name := lowerCaseFirst(mv.Name)
		funcName := serviceName + "_" + name
		fd := &funcData{
			fv: mv.Func,
		}

		var err error

		if fd.inNum, fd.reqt, err = validateFunc(funcName, fd.fv); err != nil {
			panic(fmt.Sprintf("jsonrpc: %s", err))
		}

		funcMap[name] = fd
	}

	d.serviceMap[serviceName] = &serviceData{
		sv:      reflect.ValueOf(service),
		funcMap: funcMap,
	}
}

func validateFunc(funcName string, fv reflect.Value) (inNum int, reqt []reflect.Type, err error) {
	if funcName == "" {
		err = fmt.Errorf("funcName cannot be empty")

		return
	}

	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		err = fmt.Errorf("function '%s' must be a function instead of %s", funcName, ft)

		return
	}

	inNum = ft.NumIn()

	if outNum := ft.NumOut(); outNum != 2 {
		err = fmt.Errorf("unexpected number of output arguments in the function '%s': %d. Expected 2", funcName, outNum)

		return
	}

	if !isErrorType(ft.Out(1)) {
		err = fmt.Errorf(
			"unexpected type for the second return value of the function '%s': '%s'. Expected '%s'",
			funcName,
			ft.Out(1),
			errt,
		)

		return
	}

	reqt = make([]reflect.Type, inNum)
	for i := 0; i < inNum; i++ {
		reqt[i] = ft.In(i)
	}

	return
}

var errt = reflect.TypeOf((*error)(nil)).Elem()

func isErrorType(t reflect.Type) bool {
	return t.Implements(errt)
}

func getError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}

	//nolint:forcetypeassert
	return v.Interface().(error)
}

func lowerCaseFirst(str string) string {
	for i, v := range str {
		return string(unicode.ToLower(v)) + str[i+1:]
	}

	return ""
}
