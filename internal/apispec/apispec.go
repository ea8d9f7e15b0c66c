// Package apispec owns the embedded OpenAPI document. It serves the
// documentation pages and gates documented routes: requests are checked
// before the handler runs and responses before they leave the server.
package apispec

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/apidemo/internal/errortranslator"
	"github.com/patric-chuzhbe/apidemo/internal/logger"
)

//go:embed openapi.yaml
var document []byte

// DocumentPath is where the raw document is served.
const DocumentPath = "/api-docs/openapi.yaml"

// Spec is a loaded and validated OpenAPI document.
type Spec struct {
	doc               *openapi3.T
	raw               []byte
	validateRequests  bool
	validateResponses bool
}

// InitOption configures Load.
type InitOption func(*Spec)

// WithRequestValidation toggles the request gate.
func WithRequestValidation(enabled bool) InitOption {
	return func(s *Spec) {
		s.validateRequests = enabled
	}
}

// WithResponseValidation toggles the response gate.
func WithResponseValidation(enabled bool) InitOption {
	return func(s *Spec) {
		s.validateResponses = enabled
	}
}

// WithDocument replaces the embedded document.
func WithDocument(raw []byte) InitOption {
	return func(s *Spec) {
		s.raw = raw
	}
}

// Load parses and validates the document. Both gates are on by default.
func Load(ctx context.Context, optionsProto ...InitOption) (*Spec, error) {
	s := &Spec{
		raw:               document,
		validateRequests:  true,
		validateResponses: true,
	}
	for _, protoOption := range optionsProto {
		protoOption(s)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(s.raw)
	if err != nil {
		return nil, fmt.Errorf("parse the OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate the OpenAPI document: %w", err)
	}
	s.doc = doc

	return s, nil
}

// Document returns the raw YAML document.
func (s *Spec) Document() []byte {
	return s.raw
}

// Title returns info.title of the document.
func (s *Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

// route resolves the documented operation for a request chi has already
// routed. Its pattern syntax, `/users/{id}`, is the one OpenAPI uses.
func (s *Spec) route(r *http.Request) (*routers.Route, map[string]string) {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil, nil
	}

	pattern := rctx.RoutePattern()
	pathItem := s.doc.Paths.Value(pattern)
	if pathItem == nil {
		return nil, nil
	}
	operation := pathItem.GetOperation(r.Method)
	if operation == nil {
		return nil, nil
	}

	pathParams := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		pathParams[key] = rctx.URLParams.Values[i]
	}

	return &routers.Route{
		Spec:      s.doc,
		Path:      pattern,
		PathItem:  pathItem,
		Method:    r.Method,
		Operation: operation,
	}, pathParams
}

// Gate is a chi middleware for routes declared in the document. Register
// it inside the router, e.g. with Group, so the route pattern is known.
func (s *Spec) Gate(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		route, pathParams := s.route(request)
		if route == nil || (!s.validateRequests && !s.validateResponses) {
			h.ServeHTTP(response, request)
			return
		}

		requestInput := &openapi3filter.RequestValidationInput{
			Request:    request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				MultiError: true,
			},
		}

		if s.validateRequests {
			if err := openapi3filter.ValidateRequest(request.Context(), requestInput); err != nil {
				errortranslator.Respond(response, request, errortranslator.NewValidationError(Details(err), err))
				return
			}
		}

		if !s.validateResponses {
			h.ServeHTTP(response, request)
			return
		}

		recorder := newBufferedResponseWriter()
		h.ServeHTTP(recorder, request)

		responseInput := &openapi3filter.ResponseValidationInput{
			RequestValidationInput: requestInput,
			Status:                 recorder.status,
			Header:                 recorder.header,
			Options: &openapi3filter.Options{
				MultiError:            true,
				IncludeResponseStatus: true,
			},
		}
		responseInput.SetBodyBytes(recorder.body.Bytes())

		if err := openapi3filter.ValidateResponse(request.Context(), responseInput); err != nil {
			logger.Log.Errorln(
				"response does not match the API document",
				"request_id", logger.RequestID(request.Context()),
				"route", route.Path,
				"method", route.Method,
				"status", recorder.status,
				zap.Error(err),
			)
			errortranslator.Respond(response, request, &errortranslator.Error{
				Name:    errortranslator.NameInternal,
				Status:  http.StatusInternalServerError,
				Message: "response does not match the API document",
				Details: Details(err),
				Err:     err,
			})
			return
		}

		recorder.flushTo(response)
	}

	return http.HandlerFunc(middleware)
}

// Details flattens a kin-openapi validation error into `detalles` entries.
func Details(err error) []errortranslator.Detail {
	var details []errortranslator.Detail
	collectDetails(err, "", &details)
	return details
}

func collectDetails(err error, prefix string, details *[]errortranslator.Detail) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collectDetails(inner, prefix, details)
		}

	case *openapi3filter.RequestError:
		location := "request"
		switch {
		case e.Parameter != nil:
			location = e.Parameter.In + "/" + e.Parameter.Name
		case e.RequestBody != nil:
			location = "body"
		}
		if e.Err == nil {
			*details = append(*details, errortranslator.Detail{Path: location, Message: e.Reason})
			return
		}
		collectDetails(e.Err, location, details)

	case *openapi3filter.ResponseError:
		if e.Err == nil {
			*details = append(*details, errortranslator.Detail{Path: "response", Message: e.Reason})
			return
		}
		collectDetails(e.Err, "response", details)

	case *openapi3.SchemaError:
		path := prefix
		if pointer := e.JSONPointer(); len(pointer) > 0 {
			path = strings.TrimPrefix(path+"/"+strings.Join(pointer, "/"), "/")
		}
		*details = append(*details, errortranslator.Detail{Path: path, Message: e.Reason})

	default:
		if inner := errors.Unwrap(err); inner != nil {
			collectDetails(inner, prefix, details)
			return
		}
		*details = append(*details, errortranslator.Detail{Path: prefix, Message: err.Error()})
	}
}

type bufferedResponseWriter struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newBufferedResponseWriter() *bufferedResponseWriter {
	return &bufferedResponseWriter{
		header: http.Header{},
		status: http.StatusOK,
	}
}

func (w *bufferedResponseWriter) Header() http.Header {
	return w.header
}

func (w *bufferedResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.status = statusCode
	w.wroteHeader = true
}

func (w *bufferedResponseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(b)
}

func (w *bufferedResponseWriter) flushTo(response http.ResponseWriter) {
	for key, values := range w.header {
		response.Header()[key] = values
	}
	response.WriteHeader(w.status)
	if w.body.Len() == 0 {
		return
	}
	if _, err := response.Write(w.body.Bytes()); err != nil {
		logger.Log.Debugln("writing the buffered response failed", zap.Error(err))
	}
}
