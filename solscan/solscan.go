package solscan

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"solgraph/config"
	"solgraph/log"

	"github.com/cenkalti/backoff/v4"
	eParser "github.com/go-errors/errors"
	"github.com/valyala/fasthttp"
)

var client = &fasthttp.Client{}

const requestTimeout = 20 * time.Second

// get issues one authenticated GET against the solscan API,
// retrying transient failures with exponential backoff. Client side
// errors are not retried; whatever the endpoint rejected once it
// will reject again.
func get(path string, args map[string]string, target interface{}) error {
	c := config.GetSolscan()

	values := url.Values{}
	for k, v := range args {
		values.Set(k, v)
	}
	uri := fmt.Sprintf("%s%s?%s", c.BaseURL, path, values.Encode())

	var body []byte

	operation := func() error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.Header.SetMethod("GET")
		req.Header.Set("token", c.APIKey)
		req.SetRequestURI(uri)

		if err := client.DoTimeout(req, resp, requestTimeout); err != nil {
			return err
		}

		status := resp.StatusCode()
		switch {
		case status == fasthttp.StatusOK:
			body = append([]byte(nil), resp.Body()...)
			return nil
		case status >= 500 || status == fasthttp.StatusTooManyRequests:
			return fmt.Errorf("solscan returned status %d", status)
		default:
			return backoff.Permanent(fmt.Errorf("solscan returned status %d", status))
		}
	}

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
	if err != nil {
		log.Error.Println(errors.New(eParser.Wrap(err, 0).ErrorStack()))
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		log.Error.Printf("Request: %v\n", uri)
		log.Error.Printf("Response: %v\n", string(body))
		return err
	}

	return nil
}
