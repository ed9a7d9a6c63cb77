package rpc

import (
	"net/http"

	"basketchain/native/order"
)

type orderPairParams struct {
	Orderer string `json:"orderer"`
	Basket  string `json:"basket"`
}

type orderStartParams struct {
	Orderer string `json:"orderer"`
	Basket  string `json:"basket"`
	Type    string `json:"type"`
	Amount  uint64 `json:"amount"`
}

type orderSettleParams struct {
	Orderer      string `json:"orderer"`
	Basket       string `json:"basket"`
	Index        uint16 `json:"index"`
	TransferMint string `json:"transferMint"`
}

type orderJSON struct {
	Basket  string `json:"basket"`
	Orderer string `json:"orderer"`
	Status  string `json:"status"`
	Type    string `json:"type"`
	Amount  uint64 `json:"amount"`
	Bitmap  []bool `json:"bitmap"`
}

func orderToJSON(o *order.Order) orderJSON {
	return orderJSON{
		Basket:  encodeAddr(o.Basket),
		Orderer: encodeAddr(o.Orderer),
		Status:  o.Status.String(),
		Type:    o.Type.String(),
		Amount:  o.Amount,
		Bitmap:  append([]bool(nil), o.Bitmap...),
	}
}

func (s *Server) orderPair(w http.ResponseWriter, req *RPCRequest, orderer, basketMint string) (ordererAddr, basketAddr [20]byte, ok bool) {
	var err error
	if ordererAddr, err = parseAddr(orderer); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return ordererAddr, basketAddr, false
	}
	if basketAddr, err = parseAddr(basketMint); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return ordererAddr, basketAddr, false
	}
	return ordererAddr, basketAddr, true
}

func (s *Server) handleOrderInit(w http.ResponseWriter, req *RPCRequest) {
	var params orderPairParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	orderer, basketMint, ok := s.orderPair(w, req, params.Orderer, params.Basket)
	if !ok {
		return
	}
	o, err := s.node.InitOrder(orderer, basketMint)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, orderToJSON(o))
}

func (s *Server) handleOrderStart(w http.ResponseWriter, req *RPCRequest) {
	var params orderStartParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	orderer, basketMint, ok := s.orderPair(w, req, params.Orderer, params.Basket)
	if !ok {
		return
	}
	var orderType order.Type
	switch params.Type {
	case "construction":
		orderType = order.TypeConstruction
	case "deconstruction":
		orderType = order.TypeDeconstruction
	default:
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", "type must be construction or deconstruction")
		return
	}
	if err := s.node.StartOrder(orderer, basketMint, orderType, params.Amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleOrderSettle(w http.ResponseWriter, req *RPCRequest, decohere bool) {
	var params orderSettleParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	orderer, basketMint, ok := s.orderPair(w, req, params.Orderer, params.Basket)
	if !ok {
		return
	}
	transferMint, err := parseAddr(params.TransferMint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if decohere {
		err = s.node.Decohere(orderer, basketMint, params.Index, transferMint)
	} else {
		err = s.node.Cohere(orderer, basketMint, params.Index, transferMint)
	}
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleOrderFinalize(w http.ResponseWriter, req *RPCRequest) {
	var params orderPairParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	orderer, basketMint, ok := s.orderPair(w, req, params.Orderer, params.Basket)
	if !ok {
		return
	}
	if err := s.node.FinalizeOrder(orderer, basketMint); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleOrderGet(w http.ResponseWriter, req *RPCRequest) {
	var params orderPairParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	orderer, basketMint, ok := s.orderPair(w, req, params.Orderer, params.Basket)
	if !ok {
		return
	}
	o, err := s.node.Order(basketMint, orderer)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, orderToJSON(o))
}
