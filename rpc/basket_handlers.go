package rpc

import (
	"net/http"

	"basketchain/native/basket"
)

type controllerOwnerParams struct {
	Owner string `json:"owner"`
}

type controllerSetOwnerParams struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"newOwner"`
}

type controllerSetBpsParams struct {
	Caller string `json:"caller"`
	Bps    uint16 `json:"bps"`
}

type controllerJSON struct {
	Owner                    string `json:"owner"`
	DefaultConstructionBps   uint16 `json:"defaultConstructionBps"`
	DefaultDeconstructionBps uint16 `json:"defaultDeconstructionBps"`
	DefaultManagerCutBps     uint16 `json:"defaultManagerCutBps"`
}

func controllerToJSON(c *basket.Controller) controllerJSON {
	return controllerJSON{
		Owner:                    encodeAddr(c.Owner),
		DefaultConstructionBps:   c.DefaultConstructionBps,
		DefaultDeconstructionBps: c.DefaultDeconstructionBps,
		DefaultManagerCutBps:     c.DefaultManagerCutBps,
	}
}

func (s *Server) handleControllerInitialize(w http.ResponseWriter, req *RPCRequest) {
	var params controllerOwnerParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	owner, err := parseAddr(params.Owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	ctrl, err := s.node.Initialize(owner)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, controllerToJSON(ctrl))
}

func (s *Server) handleControllerGet(w http.ResponseWriter, req *RPCRequest) {
	ctrl, err := s.node.Controller()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, controllerToJSON(ctrl))
}

func (s *Server) handleControllerSetOwner(w http.ResponseWriter, req *RPCRequest) {
	var params controllerSetOwnerParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	newOwner, err := parseAddr(params.NewOwner)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.SetOwner(caller, newOwner); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleControllerSetBps(w http.ResponseWriter, req *RPCRequest) {
	var params controllerSetBpsParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	switch req.Method {
	case "controller_setDefaultConstructionBps":
		err = s.node.SetDefaultConstructionBps(caller, params.Bps)
	case "controller_setDefaultDeconstructionBps":
		err = s.node.SetDefaultDeconstructionBps(caller, params.Bps)
	case "controller_setDefaultManagerCut":
		err = s.node.SetDefaultManagerCut(caller, params.Bps)
	}
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

type basketCreateParams struct {
	Manager string `json:"manager"`
	Mint    string `json:"mint"`
}

type basketMintParams struct {
	Mint string `json:"mint"`
}

type constituentJSON struct {
	Mint   string `json:"mint"`
	Weight uint64 `json:"weight"`
}

type basketAppendParams struct {
	Caller       string            `json:"caller"`
	Mint         string            `json:"mint"`
	Constituents []constituentJSON `json:"constituents"`
}

type basketCallerParams struct {
	Caller string `json:"caller"`
	Mint   string `json:"mint"`
}

type basketSetManagerParams struct {
	Caller     string `json:"caller"`
	Mint       string `json:"mint"`
	NewManager string `json:"newManager"`
}

type basketSetBpsParams struct {
	Caller string `json:"caller"`
	Mint   string `json:"mint"`
	Bps    uint16 `json:"bps"`
}

type basketJSON struct {
	Mint              string            `json:"mint"`
	Manager           string            `json:"manager"`
	Status            string            `json:"status"`
	ConstructionBps   uint16            `json:"constructionBps"`
	DeconstructionBps uint16            `json:"deconstructionBps"`
	ManagerCutBps     uint16            `json:"managerCutBps"`
	Capacity          uint16            `json:"capacity"`
	Constituents      []constituentJSON `json:"constituents"`
}

func basketToJSON(b *basket.Basket) basketJSON {
	out := basketJSON{
		Mint:              encodeAddr(b.Mint),
		Manager:           encodeAddr(b.Manager),
		Status:            b.Status.String(),
		ConstructionBps:   b.ConstructionBps,
		DeconstructionBps: b.DeconstructionBps,
		ManagerCutBps:     b.ManagerCutBps,
		Capacity:          b.Constituents.Capacity,
		Constituents:      make([]constituentJSON, 0, b.Constituents.Len()),
	}
	for _, c := range b.Constituents.Constituents {
		out.Constituents = append(out.Constituents, constituentJSON{Mint: encodeAddr(c.Mint), Weight: c.Weight})
	}
	return out
}

func (s *Server) handleBasketCreate(w http.ResponseWriter, req *RPCRequest) {
	var params basketCreateParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	manager, err := parseAddr(params.Manager)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	b, err := s.node.CreateBasket(manager, mint)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, basketToJSON(b))
}

func (s *Server) handleBasketAppend(w http.ResponseWriter, req *RPCRequest) {
	var params basketAppendParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	add := make([]basket.Constituent, 0, len(params.Constituents))
	for _, c := range params.Constituents {
		constituentMint, err := parseAddr(c.Mint)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
			return
		}
		add = append(add, basket.Constituent{Mint: constituentMint, Weight: c.Weight})
	}
	if err := s.node.AppendConstituents(caller, mint, add); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleBasketFinalize(w http.ResponseWriter, req *RPCRequest) {
	var params basketCallerParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.FinalizeBasket(caller, mint); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleBasketGet(w http.ResponseWriter, req *RPCRequest) {
	var params basketMintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	b, err := s.node.Basket(mint)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, basketToJSON(b))
}

func (s *Server) handleBasketList(w http.ResponseWriter, req *RPCRequest) {
	baskets, err := s.node.Baskets()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	out := make([]basketJSON, 0, len(baskets))
	for _, b := range baskets {
		out = append(out, basketToJSON(b))
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handleBasketSetManager(w http.ResponseWriter, req *RPCRequest) {
	var params basketSetManagerParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	newManager, err := parseAddr(params.NewManager)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.SetManager(caller, mint, newManager); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleBasketSetBps(w http.ResponseWriter, req *RPCRequest) {
	var params basketSetBpsParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	switch req.Method {
	case "basket_setManagerCut":
		err = s.node.SetManagerCut(caller, mint, params.Bps)
	case "basket_setConstructionBps":
		err = s.node.SetConstructionBps(caller, mint, params.Bps)
	case "basket_setDeconstructionBps":
		err = s.node.SetDeconstructionBps(caller, mint, params.Bps)
	}
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}
