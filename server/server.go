package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"solgraph/graph"
	"solgraph/log"
	"solgraph/tx"
	"solgraph/util"

	"github.com/valyala/fasthttp"
)

// Handler serves the flow graph HTTP API.
type Handler struct {
	Builder *graph.Builder
}

// Run listens on the given address and serves until the listener fails.
func Run(listen string, builder *graph.Builder) error {
	h := &Handler{Builder: builder}
	return fasthttp.ListenAndServe(listen, h.Route)
}

// Route dispatches one request.
func (h *Handler) Route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())

	switch {
	case strings.HasPrefix(path, "/transaction_flows/") && ctx.IsPost():
		h.transactionFlows(ctx, strings.TrimPrefix(path, "/transaction_flows/"))

	case strings.HasPrefix(path, "/account_flows/") && ctx.IsPost():
		h.accountFlows(ctx, strings.TrimPrefix(path, "/account_flows/"))

	case strings.HasPrefix(path, "/account/") && ctx.IsGet():
		h.account(ctx, strings.TrimPrefix(path, "/account/"))

	default:
		writeError(ctx, fasthttp.StatusNotFound, "Not found")
	}
}

// existingNetworkData is the request body shared by both flow routes:
// what the caller's already rendered graph contains, so the build
// returns only additions.
type existingNetworkData struct {
	ExistingNodes []string `json:"existingNodes"`
	ExistingEdges []string `json:"existingEdges"`
}

func (h *Handler) transactionFlows(ctx *fasthttp.RequestCtx, signature string) {
	if !util.SignatureValid(signature) {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid transaction signature")
		return
	}

	existing, err := parseExisting(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.Builder.BuildTxFlows(context.Background(), signature, existing.ExistingNodes, existing.ExistingEdges)
	if err != nil {
		writeBuildError(ctx, err)
		return
	}

	if len(result.Edges) == 0 {
		writeError(ctx, fasthttp.StatusNotFound, "No valid transfers found in this transaction")
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, result)
}

func (h *Handler) accountFlows(ctx *fasthttp.RequestCtx, address string) {
	if !util.AddressValid(address) {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid account address")
		return
	}

	existing, err := parseExisting(ctx)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body")
		return
	}

	q := flowQuery(ctx)

	result, err := h.Builder.BuildAccountFlows(context.Background(), address, q, existing.ExistingNodes, existing.ExistingEdges)
	if err != nil {
		writeBuildError(ctx, err)
		return
	}

	if len(result.Edges) == 0 {
		writeError(ctx, fasthttp.StatusNotFound, "No valid flows found for this account")
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, result)
}

func (h *Handler) account(ctx *fasthttp.RequestCtx, address string) {
	if !util.AddressValid(address) {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid account address")
		return
	}

	account, err := h.Builder.AccountMetadata(context.Background(), address)
	if err != nil {
		writeBuildError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, map[string]interface{}{
		"pubkey": account.Address,
		"label":  account.Label,
		"tags":   account.TagList(),
		"type":   account.Type,
		"imgUrl": account.Icon,
	})
}

func parseExisting(ctx *fasthttp.RequestCtx) (existingNetworkData, error) {
	existing := existingNetworkData{}

	body := ctx.PostBody()
	if len(body) == 0 {
		return existing, nil
	}

	err := json.Unmarshal(body, &existing)
	return existing, err
}

func flowQuery(ctx *fasthttp.RequestCtx) tx.FlowQuery {
	args := ctx.QueryArgs()

	q := tx.FlowQuery{
		Direction: "in",
		Sort:      "asc",
		Limit:     100,
		Page:      1,
	}

	if direction := string(args.Peek("direction")); direction != "" {
		q.Direction = direction
	}
	if sort := string(args.Peek("sort")); sort != "" {
		q.Sort = sort
	}
	if limit, err := args.GetUint("limit"); err == nil && limit > 0 {
		q.Limit = limit
	}
	if page, err := args.GetUint("page"); err == nil && page > 0 {
		q.Page = page
	}

	return q
}

// writeBuildError maps builder failures onto status codes: a shape
// mismatch in the transaction is the client's problem, anything else
// means an upstream collaborator failed.
func writeBuildError(ctx *fasthttp.RequestCtx, err error) {
	if errors.Is(err, graph.ErrMalformed) {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}

	log.Errorf("Request %s failed: %v", ctx.Path(), err)
	writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
}

func writeError(ctx *fasthttp.RequestCtx, status int, detail string) {
	writeJSON(ctx, status, map[string]string{"detail": detail})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")

	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}
