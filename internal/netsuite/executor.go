package netsuite

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"regexp"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/request"
)

const (
	maskedAuthorization  = "Bearer **********"
	authorizationHeader  = "Authorization"
	locationHeader       = "Location"
	nonObjectResponseKey = "data"
)

var locationIDPattern = regexp.MustCompile(`/(\d+)(?:\?|$)`)

// IDFromLocation extracts the id of a created record from the Location
// header of an insert response.
func IDFromLocation(location string) (string, error) {
	match := locationIDPattern.FindStringSubmatch(location)
	if match == nil {
		return "", fmt.Errorf("cannot extract new ID from location: %s", location)
	}
	return match[1], nil
}

// Sender sends assembled requests. *Client implements it.
type Sender interface {
	Do(ctx context.Context, basePath string, req *domain.HTTPRequest) (*Response, error)
	URL(basePath, urlPath string) string
}

// Executor runs a filled operation form against NetSuite.
type Executor struct {
	assembler *request.Assembler
	sender    Sender
	log       logger.ILogger
}

// NewExecutor creates an executor.
func NewExecutor(assembler *request.Assembler, sender Sender, log logger.ILogger) *Executor {
	return &Executor{
		assembler: assembler,
		sender:    sender,
		log:       log,
	}
}

// Execute assembles and sends the operation selected by the resource and
// operation keys of values.
//
// Inserts answered with 204 return the new record id read from the Location
// header. In debug mode the result carries the sent request and the response
// status under "debug", and request failures are returned as a result with
// the status and the error instead of failing.
func (e *Executor) Execute(ctx context.Context, values map[string]any) (map[string]any, error) {
	resource, _ := values[domain.ResourceKey].(string)
	operation, _ := values[domain.OperationKey].(string)
	debug, _ := values[domain.DebugModeKey].(bool)

	if resource == "" || operation == "" {
		return nil, fmt.Errorf("%w: resource and operation are required", domain.ErrInvalidRequest)
	}

	e.log.Infof("Executing operation: %s, resource: %s", operation, resource)

	req, err := e.assembler.Assemble(resource, operation, values)
	if err != nil {
		return nil, err
	}

	basePath := RecordBasePath
	if resource == e.assembler.Policy().QueryResource {
		basePath = QueryBasePath
		req.Headers["Prefer"] = "transient"
	}

	result, resp, err := e.send(ctx, basePath, req)
	if err != nil {
		if !debug {
			return nil, err
		}
		e.log.Errorf("Operation %s failed: %v", operation, err)
		return e.errorResult(basePath, req, err), nil
	}

	if debug {
		result = withDebug(result, map[string]any{
			"request":  e.debugRequest(basePath, req),
			"response": debugResponse(resp),
		})
	}

	return result, nil
}

func (e *Executor) send(ctx context.Context, basePath string, req *domain.HTTPRequest) (map[string]any, *Response, error) {
	resp, err := e.sender.Do(ctx, basePath, req)
	if err != nil {
		return nil, resp, err
	}

	if req.Method == http.MethodPost && resp.StatusCode == http.StatusNoContent {
		location := resp.Headers.Get(locationHeader)
		if location == "" {
			return nil, resp, errors.New("location header not found in response, cannot extract ID")
		}
		id, err := IDFromLocation(location)
		if err != nil {
			return nil, resp, err
		}
		return map[string]any{"id": id}, resp, nil
	}

	return asObject(resp.Body), resp, nil
}

func (e *Executor) errorResult(basePath string, req *domain.HTTPRequest, err error) map[string]any {
	result := map[string]any{}
	detail := any(err.Error())

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		result["statusCode"] = apiErr.StatusCode
		result["statusMessage"] = apiErr.StatusMessage()
		detail = map[string]any{
			"message": apiErr.Error(),
			"body":    apiErr.Body,
		}
	} else {
		result["statusMessage"] = err.Error()
	}

	return withDebug(result, map[string]any{
		"request": e.debugRequest(basePath, req),
		"error":   detail,
	})
}

// debugRequest describes a sent request. The bearer token is attached by the
// transport on every call, so the headers always carry it, masked. Empty
// query and body are left out.
func (e *Executor) debugRequest(basePath string, req *domain.HTTPRequest) map[string]any {
	headers := make(map[string]any, len(req.Headers)+1)
	maps.Copy(headers, req.Headers)
	headers[authorizationHeader] = maskedAuthorization

	out := map[string]any{
		"method":  req.Method,
		"url":     e.sender.URL(basePath, req.URLPath),
		"headers": headers,
	}

	if len(req.QueryString) > 0 {
		out["qs"] = req.QueryString
	}
	if !request.IsEmpty(req.Body) {
		out["body"] = req.Body
	}

	return out
}

func debugResponse(resp *Response) map[string]any {
	out := map[string]any{
		"statusCode":    resp.StatusCode,
		"statusMessage": resp.StatusMessage(),
	}
	if len(resp.Headers) > 0 {
		out["headers"] = resp.Headers
	}
	return out
}

// withDebug returns result with the debug entry added. Keys of result win.
func withDebug(result, debug map[string]any) map[string]any {
	out := map[string]any{"debug": debug}
	maps.Copy(out, result)
	return out
}

// asObject keeps object bodies as they are and nests anything else.
func asObject(body any) map[string]any {
	switch b := body.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return b
	default:
		return map[string]any{nonObjectResponseKey: b}
	}
}
