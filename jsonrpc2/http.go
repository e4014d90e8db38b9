package jsonrpc2

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"golang.org/x/time/rate"
)

const httpContentType = "application/json"

var _ http.Handler = &HTTPServer{}

// HTTPServer provides a JSONRPC server over HTTP by implementing http.Handler.
// Each POST body is one payload, the response body is the response payload.
type HTTPServer struct {
	Server

	// MaxContentLength is the request size limit (optional)
	MaxContentLength int64
	// Limiter throttles requests, excess requests get a 429 (optional)
	Limiter *rate.Limiter
}

func (h *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && r.ContentLength == 0 && r.URL.RawQuery == "" {
		// Ignore empty GET requests
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.Limiter != nil && !h.Limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	if h.MaxContentLength > 0 && r.ContentLength > h.MaxContentLength {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	defer r.Body.Close()
	var body io.Reader = r.Body
	if h.MaxContentLength > 0 {
		body = io.LimitReader(r.Body, h.MaxContentLength+1)
	}
	data, err := ioutil.ReadAll(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.MaxContentLength > 0 && int64(len(data)) > h.MaxContentLength {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	out := h.Server.ServePayload(r.Context(), data)
	if out == nil {
		// Only notifications
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", httpContentType)
	if _, err := w.Write(out); err != nil {
		logger.Printf("HTTPServer: Failed to write response to %s: %s", r.RemoteAddr, err)
	}
}

var _ Service = &HTTPService{}

// HTTPService is a Service that posts each call to an HTTP endpoint.
type HTTPService struct {
	Client
	HTTPClient http.Client

	// Endpoint is the HTTP URL to dial for RPC calls.
	Endpoint string
	// MaxContentLength is the response size limit (optional)
	MaxContentLength int64
}

// roundTrip posts a payload and returns the response payload, nil for an
// empty response.
func (service *HTTPService) roundTrip(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, service.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", httpContentType)
	req.Header.Set("Accept", httpContentType)
	req = req.WithContext(ctx)

	resp, err := service.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   fmt.Sprintf("bad status code: %d", resp.StatusCode),
		}
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if service.MaxContentLength > 0 && resp.ContentLength > service.MaxContentLength {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "response too large",
		}
	}

	var r io.Reader = resp.Body
	if service.MaxContentLength > 0 {
		r = io.LimitReader(resp.Body, service.MaxContentLength)
	}
	out, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return nil, nil
	}
	return out, nil
}

// exchange posts the payload and delivers the response to the pending calls.
// Calls left unanswered are resolved with a *TransportError.
func (service *HTTPService) exchange(ctx context.Context, body []byte, pending ...*Pending) {
	out, err := service.roundTrip(ctx, body)
	if err == nil && out != nil {
		_, err = service.Client.DeliverPayload(out)
	}
	if err == nil {
		err = HTTPRequestError{Reason: "missing response in RPC message"}
	}
	for _, p := range pending {
		if p != nil {
			service.Client.pending.cancel(p, &TransportError{Err: err})
		}
	}
}

func (service *HTTPService) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	p, err := TupleParams(params...)
	if err != nil {
		return err
	}
	return service.CallParams(ctx, result, method, p)
}

// CallParams is Call with params that are already normalized.
func (service *HTTPService) CallParams(ctx context.Context, result interface{}, method string, params Params) error {
	msg, pending, err := service.Client.Call(0, method, params)
	if err != nil {
		return err
	}
	body, err := Encode(msg)
	if err != nil {
		pending.Cancel()
		return err
	}
	service.exchange(ctx, body, pending)
	return pending.Result(ctx, result)
}

// Notify posts a notification. The server answers it with no content.
func (service *HTTPService) Notify(ctx context.Context, method string, params ...interface{}) error {
	p, err := TupleParams(params...)
	if err != nil {
		return err
	}
	msg, err := service.Client.Notification(0, method, p)
	if err != nil {
		return err
	}
	body, err := Encode(msg)
	if err != nil {
		return err
	}
	if _, err := service.roundTrip(ctx, body); err != nil {
		return &TransportError{Err: err}
	}
	return nil
}

// Batch posts the calls as one batch. The returned entries are resolved once
// Batch returns, nil for notifications.
func (service *HTTPService) Batch(ctx context.Context, calls ...BatchCall) ([]*Pending, error) {
	batch, pending, err := service.Client.Batch(calls...)
	if err != nil {
		return nil, err
	}
	body, err := EncodeBatch(batch)
	if err != nil {
		service.Client.cancelAll(pending, err)
		return nil, err
	}
	service.exchange(ctx, body, pending...)
	return pending, nil
}

// HTTPRequestError is used when RPC over HTTP encounters an error during transport.
type HTTPRequestError struct {
	Response *http.Response
	Reason   string
}

func (err HTTPRequestError) Error() string {
	return fmt.Sprintf("http rpc request error: %s", err.Reason)
}
