package rpc

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"basketchain/core"
	"basketchain/storage"
)

func testAddr(fill byte) string {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return encodeAddr(a)
}

func newTestServer(t *testing.T) (*httptest.Server, *core.Node) {
	t.Helper()
	node := core.NewNode(storage.NewMemDB(), slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelError})))
	srv := NewServer(node, slog.Default())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, node
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(bytes.TrimSpace(p)))
	return len(p), nil
}

func call(t *testing.T, url, method string, params interface{}) RPCResponse {
	t.Helper()
	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  []interface{}{},
	}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	payload, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func result(t *testing.T, resp RPCResponse, out interface{}) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected rpc error: %+v", resp.Error)
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := call(t, ts.URL, "basket_destroy", map[string]string{})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestControllerLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	owner := testAddr(0x01)

	resp := call(t, ts.URL, "controller_get", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeNotFound, resp.Error.Code)

	var ctrl controllerJSON
	result(t, call(t, ts.URL, "controller_initialize", controllerOwnerParams{Owner: owner}), &ctrl)
	require.Equal(t, owner, ctrl.Owner)
	require.Equal(t, uint16(90), ctrl.DefaultConstructionBps)
	require.Equal(t, uint16(2000), ctrl.DefaultManagerCutBps)

	resp = call(t, ts.URL, "controller_initialize", controllerOwnerParams{Owner: owner})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeConflict, resp.Error.Code)

	resp = call(t, ts.URL, "controller_setDefaultConstructionBps", controllerSetBpsParams{Caller: testAddr(0x09), Bps: 50})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeForbidden, resp.Error.Code)

	result(t, call(t, ts.URL, "controller_setDefaultConstructionBps", controllerSetBpsParams{Caller: owner, Bps: 50}), new(bool))
	result(t, call(t, ts.URL, "controller_get", nil), &ctrl)
	require.Equal(t, uint16(50), ctrl.DefaultConstructionBps)
}

func TestOrderLifecycleOverRPC(t *testing.T) {
	ts, _ := newTestServer(t)
	owner := testAddr(0x01)
	manager := testAddr(0x02)
	orderer := testAddr(0x03)
	faucet := testAddr(0x04)
	basketMint := testAddr(0x10)
	assetMint := testAddr(0x20)

	result(t, call(t, ts.URL, "controller_initialize", controllerOwnerParams{Owner: owner}), new(controllerJSON))
	result(t, call(t, ts.URL, "token_createMint", tokenCreateMintParams{Mint: basketMint, Decimals: 8}), new(bool))
	result(t, call(t, ts.URL, "token_createMint", tokenCreateMintParams{Mint: assetMint, Decimals: 8, Authority: faucet}), new(bool))

	var b basketJSON
	result(t, call(t, ts.URL, "basket_create", basketCreateParams{Manager: manager, Mint: basketMint}), &b)
	require.Equal(t, "unfinished", b.Status)

	result(t, call(t, ts.URL, "basket_append", basketAppendParams{
		Caller:       manager,
		Mint:         basketMint,
		Constituents: []constituentJSON{{Mint: assetMint, Weight: 1_00000000}},
	}), new(bool))

	// Only the manager may append.
	resp := call(t, ts.URL, "basket_append", basketAppendParams{
		Caller:       orderer,
		Mint:         basketMint,
		Constituents: []constituentJSON{{Mint: assetMint, Weight: 1}},
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeForbidden, resp.Error.Code)

	result(t, call(t, ts.URL, "basket_finalize", basketCallerParams{Caller: manager, Mint: basketMint}), new(bool))

	var list []basketJSON
	result(t, call(t, ts.URL, "basket_list", nil), &list)
	require.Len(t, list, 1)
	require.Equal(t, "finished", list[0].Status)

	// Fund the orderer and approve custody of the deposit.
	result(t, call(t, ts.URL, "token_mint", tokenMintParams{Mint: assetMint, To: orderer, Caller: faucet, Amount: 10_000000}), new(bool))
	result(t, call(t, ts.URL, "token_approve", tokenApproveParams{Mint: assetMint, Holder: orderer, Amount: 5_000000}), new(bool))

	var o orderJSON
	result(t, call(t, ts.URL, "order_init", orderPairParams{Orderer: orderer, Basket: basketMint}), &o)
	require.Equal(t, "succeeded", o.Status)

	result(t, call(t, ts.URL, "order_start", orderStartParams{
		Orderer: orderer,
		Basket:  basketMint,
		Type:    "construction",
		Amount:  1_000000,
	}), new(bool))

	result(t, call(t, ts.URL, "order_cohere", orderSettleParams{
		Orderer:      orderer,
		Basket:       basketMint,
		Index:        0,
		TransferMint: assetMint,
	}), new(bool))

	result(t, call(t, ts.URL, "order_finalize", orderPairParams{Orderer: orderer, Basket: basketMint}), new(bool))

	result(t, call(t, ts.URL, "order_get", orderPairParams{Orderer: orderer, Basket: basketMint}), &o)
	require.Equal(t, "succeeded", o.Status)

	var balance tokenBalanceResult
	result(t, call(t, ts.URL, "token_balance", tokenBalanceParams{Mint: basketMint, Holder: orderer}), &balance)
	require.Equal(t, uint64(991000), balance.Balance)

	result(t, call(t, ts.URL, "token_balance", tokenBalanceParams{Mint: assetMint, Holder: orderer}), &balance)
	require.Equal(t, uint64(9_000000), balance.Balance)
}

func TestInvalidAddressRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := call(t, ts.URL, "basket_get", basketMintParams{Mint: "not-an-address"})
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestUnsupportedVersionRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	payload := []byte(`{"jsonrpc":"1.0","id":1,"method":"controller_get","params":[]}`)
	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.Error)
	require.Equal(t, codeInvalidRequest, out.Error.Code)
}
