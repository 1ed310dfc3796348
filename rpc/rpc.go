package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"solgraph/config"
	"solgraph/log"

	eParser "github.com/go-errors/errors"
	"github.com/valyala/fasthttp"
)

var (
	client = &fasthttp.Client{}

	// servers tracks which configured rpc endpoints currently
	// answer health checks. Unhealthy ones are skipped until
	// the next refresh.
	servers map[string]bool
	sLock   sync.Mutex
)

const requestTimeout = 20 * time.Second

type jsonRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// jsonRPCResponse is the envelope part of every rpc response.
type jsonRPCResponse struct {
	JSONRPC string `json:"jsonrpc"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// getServer randomly returns one of the healthy rpc endpoints,
// or any configured endpoint when none look healthy.
func getServer() string {
	sLock.Lock()
	defer sLock.Unlock()

	candidates := []string{}
	for url, healthy := range servers {
		if healthy {
			candidates = append(candidates, url)
		}
	}

	if len(candidates) == 0 {
		candidates = config.GetRPCs()
	}

	return candidates[rand.Intn(len(candidates))]
}

func serverUnavailable(url string) {
	sLock.Lock()
	defer sLock.Unlock()

	// Incase server changed(e.g., reloaded due to config file change).
	if _, ok := servers[url]; ok {
		servers[url] = false
	}
}

// TraceHealth keeps the endpoint health table fresh.
func TraceHealth() {
	for {
		RefreshServers()

		time.Sleep(30 * time.Second)
	}
}

// RefreshServers probes every configured endpoint once and rebuilds
// the health table. Returns the number of healthy endpoints.
func RefreshServers() int {
	rpcs := config.GetRPCs()
	c := make(chan serverInfo, len(rpcs))

	for _, url := range rpcs {
		go func(url string) {
			c <- serverInfo{url: url, healthy: healthCheck(url)}
		}(url)
	}

	infos := make(map[string]bool, len(rpcs))
	healthy := 0

	for range rpcs {
		s := <-c
		infos[s.url] = s.healthy
		if s.healthy {
			healthy++
		}
	}

	close(c)

	sLock.Lock()
	servers = infos
	sLock.Unlock()

	return healthy
}

type serverInfo struct {
	url     string
	healthy bool
}

func healthCheck(url string) bool {
	var resp struct {
		jsonRPCResponse
		Result string    `json:"result"`
		Error  *rpcError `json:"error"`
	}

	if err := callServer(url, "getHealth", []interface{}{}, &resp); err != nil {
		return false
	}

	return resp.Error == nil && resp.Result == "ok"
}

// call posts one json rpc request, trying each configured endpoint at
// most once before giving up. Endpoints that fail at the transport
// level are marked unhealthy along the way.
func call(method string, params interface{}, target interface{}) error {
	var lastErr error

	for range config.GetRPCs() {
		url := getServer()

		err := callServer(url, method, params, target)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Error.Println(errors.New(eParser.Wrap(err, 0).ErrorStack()))
		serverUnavailable(url)
	}

	return lastErr
}

func callServer(url, method string, params interface{}, target interface{}) error {
	requestBody, err := json.Marshal(jsonRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod("POST")
	req.Header.SetContentType("application/json")
	req.SetRequestURI(url)
	req.SetBody(requestBody)

	if err := client.DoTimeout(req, resp, requestTimeout); err != nil {
		return err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("rpc endpoint returned status %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), target); err != nil {
		log.Error.Printf("Request body: %v\n", string(requestBody))
		log.Error.Printf("Response: %v\n", string(resp.Body()))
		return err
	}

	return nil
}
