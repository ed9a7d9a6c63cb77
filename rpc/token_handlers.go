package rpc

import "net/http"

type tokenCreateMintParams struct {
	Mint     string `json:"mint"`
	Decimals uint8  `json:"decimals"`
	// Authority, when set, registers an externally-controlled mint. When
	// empty the protocol authority controls the mint, as baskets require.
	Authority string `json:"authority,omitempty"`
}

type tokenMintParams struct {
	Mint   string `json:"mint"`
	To     string `json:"to"`
	Caller string `json:"caller"`
	Amount uint64 `json:"amount"`
}

type tokenApproveParams struct {
	Mint   string `json:"mint"`
	Holder string `json:"holder"`
	Amount uint64 `json:"amount"`
}

type tokenBalanceParams struct {
	Mint   string `json:"mint"`
	Holder string `json:"holder"`
}

type tokenBalanceResult struct {
	Mint    string `json:"mint"`
	Holder  string `json:"holder"`
	Balance uint64 `json:"balance"`
}

func (s *Server) handleTokenCreateMint(w http.ResponseWriter, req *RPCRequest) {
	var params tokenCreateMintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if params.Authority == "" {
		err = s.node.CreateMint(mint, params.Decimals)
	} else {
		var authority [20]byte
		if authority, err = parseAddr(params.Authority); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
			return
		}
		err = s.node.CreateExternalMint(mint, params.Decimals, authority)
	}
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleTokenMint(w http.ResponseWriter, req *RPCRequest) {
	var params tokenMintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	to, err := parseAddr(params.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	caller, err := parseAddr(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.MintTokens(mint, to, caller, params.Amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleTokenApprove(w http.ResponseWriter, req *RPCRequest) {
	var params tokenApproveParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	holder, err := parseAddr(params.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	if err := s.node.Approve(mint, holder, params.Amount); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, req *RPCRequest) {
	var params tokenBalanceParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	mint, err := parseAddr(params.Mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	holder, err := parseAddr(params.Holder)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	writeResult(w, req.ID, tokenBalanceResult{
		Mint:    params.Mint,
		Holder:  params.Holder,
		Balance: s.node.Ledger().BalanceOf(mint, holder),
	})
}
