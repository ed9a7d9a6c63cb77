package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basketchain/core"
	"basketchain/crypto"
	"basketchain/native/basket"
	"basketchain/native/order"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeServerError    = -32000
	codeNotFound       = -32021
	codeForbidden      = -32022
	codeConflict       = -32023
)

type Server struct {
	node *core.Node
	log  *slog.Logger
}

func NewServer(node *core.Node, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{node: node, log: logger.With("component", "rpc")}
}

// Handler returns the HTTP surface of the node: the JSON-RPC endpoint at /,
// a liveness probe, and the prometheus scrape endpoint.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Post("/", s.handle)
	return r
}

func (s *Server) Start(addr string) error {
	s.log.Info("starting JSON-RPC server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      interface{}       `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "failed to read request body", nil)
		return
	}
	var req RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	switch req.Method {
	case "controller_initialize":
		s.handleControllerInitialize(w, &req)
	case "controller_get":
		s.handleControllerGet(w, &req)
	case "controller_setOwner":
		s.handleControllerSetOwner(w, &req)
	case "controller_setDefaultConstructionBps", "controller_setDefaultDeconstructionBps", "controller_setDefaultManagerCut":
		s.handleControllerSetBps(w, &req)
	case "basket_create":
		s.handleBasketCreate(w, &req)
	case "basket_append":
		s.handleBasketAppend(w, &req)
	case "basket_finalize":
		s.handleBasketFinalize(w, &req)
	case "basket_get":
		s.handleBasketGet(w, &req)
	case "basket_list":
		s.handleBasketList(w, &req)
	case "basket_setManager":
		s.handleBasketSetManager(w, &req)
	case "basket_setManagerCut", "basket_setConstructionBps", "basket_setDeconstructionBps":
		s.handleBasketSetBps(w, &req)
	case "order_init":
		s.handleOrderInit(w, &req)
	case "order_start":
		s.handleOrderStart(w, &req)
	case "order_cohere":
		s.handleOrderSettle(w, &req, false)
	case "order_decohere":
		s.handleOrderSettle(w, &req, true)
	case "order_finalize":
		s.handleOrderFinalize(w, &req)
	case "order_get":
		s.handleOrderGet(w, &req)
	case "token_createMint":
		s.handleTokenCreateMint(w, &req)
	case "token_mint":
		s.handleTokenMint(w, &req)
	case "token_approve":
		s.handleTokenApprove(w, &req)
	case "token_balance":
		s.handleTokenBalance(w, &req)
	default:
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method), nil)
	}
}

func singleParam(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseAddr(value string) ([20]byte, error) {
	var out [20]byte
	addr, err := crypto.DecodeAddress(value)
	if err != nil {
		return out, err
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

func encodeAddr(value [20]byte) string {
	return crypto.NewAddress(crypto.BKTPrefix, value[:]).String()
}

// writeEngineError maps engine sentinel errors onto RPC status and error
// codes so callers can distinguish precondition failures from missing
// records.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	switch {
	case errors.Is(err, basket.ErrNotFound), errors.Is(err, order.ErrNotFound), errors.Is(err, basket.ErrControllerMissing):
		writeError(w, http.StatusNotFound, id, codeNotFound, "not_found", err.Error())
	case errors.Is(err, basket.ErrUnauthorized), errors.Is(err, basket.ErrNotMintAuthority), errors.Is(err, basket.ErrNotFreezeAuthority):
		writeError(w, http.StatusForbidden, id, codeForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusConflict, id, codeConflict, "conflict", err.Error())
	}
}
