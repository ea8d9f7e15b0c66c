// Package router maps the HTTP API onto the service. Handlers decode the
// request, call one service method and render the result; every error goes
// through errortranslator.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/apidemo/internal/apispec"
	"github.com/patric-chuzhbe/apidemo/internal/errortranslator"
	"github.com/patric-chuzhbe/apidemo/internal/gzippedhttp"
	"github.com/patric-chuzhbe/apidemo/internal/logger"
	"github.com/patric-chuzhbe/apidemo/internal/models"
)

// DocsPath is where the Swagger UI page is served.
const DocsPath = "/api-docs"

type usersHandler interface {
	CreateUser(ctx context.Context, input models.UserInput) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, input models.UserInput) (models.User, error)
}

type productsHandler interface {
	CreateProduct(ctx context.Context, input models.ProductInput) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int) (models.Product, error)
	ReplaceProduct(ctx context.Context, id int, input models.ProductInput) (models.Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type greeter interface {
	Hello() models.Hello
	HelloV2() models.HelloV2
}

type apiService interface {
	usersHandler
	productsHandler
	greeter
}

type documentation interface {
	Gate(h http.Handler) http.Handler
	ServeDocs(response http.ResponseWriter, request *http.Request)
	ServeDocument(response http.ResponseWriter, request *http.Request)
}

// Router holds the dependencies of the HTTP handlers.
type Router struct {
	service apiService
	docs    documentation
}

// decodeJSON reads the request body into dst. An empty body decodes as an
// empty object.
func decodeJSON(request *http.Request, dst any) error {
	err := json.NewDecoder(request.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pathID parses the {id} parameter. A value that is not an integer can not
// name any record, so it is reported with notFound.
func pathID(request *http.Request, notFound error) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(request, "id"))
	if err != nil {
		return 0, fmt.Errorf("%w: id %q", notFound, chi.URLParam(request, "id"))
	}
	return id, nil
}

// GetRoot sends clients to the API documentation.
func (r *Router) GetRoot(res http.ResponseWriter, req *http.Request) {
	http.Redirect(res, req, DocsPath, http.StatusFound)
}

// PostUsers creates a user.
func (r *Router) PostUsers(res http.ResponseWriter, req *http.Request) {
	var input models.UserInput
	if err := decodeJSON(req, &input); err != nil {
		errortranslator.Respond(res, req, errortranslator.NewBadRequest(err))
		return
	}

	created, err := r.service.CreateUser(req.Context(), input)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	errortranslator.RespondWithJSON(res, http.StatusCreated, created)
}

// GetUser returns one user.
func (r *Router) GetUser(res http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, models.ErrUserNotFound)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	found, err := r.service.GetUser(req.Context(), id)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	errortranslator.RespondWithJSON(res, http.StatusOK, found)
}

// PostUser overwrites name, email and age of a user.
func (r *Router) PostUser(res http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, models.ErrUserNotFound)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	var input models.UserInput
	if err := decodeJSON(req, &input); err != nil {
		errortranslator.Respond(res, req, errortranslator.NewBadRequest(err))
		return
	}

	updated, err := r.service.UpdateUser(req.Context(), id, input)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	errortranslator.RespondWithJSON(res, http.StatusOK, updated)
}

// PostV1products creates a product. A body that does not decode into a
// product, e.g. a price sent as a string, is an invalid product.
func (r *Router) PostV1products(res http.ResponseWriter, req *http.Request) {
	var input models.ProductInput
	if err := decodeJSON(req, &input); err != nil {
		errortranslator.Respond(res, req, fmt.Errorf("%w: %w", models.ErrInvalidProduct, err))
		return
	}

	created, err := r.service.CreateProduct(req.Context(), input)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	errortranslator.RespondWithJSON(res, http.StatusCreated, created)
}

// GetV1products lists every product in insertion order.
func (r *Router) GetV1products(res http.ResponseWriter, req *http.Request) {
	products, err := r.service.ListProducts(req.Context())
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	errortranslator.RespondWithJSON(res, http.StatusOK, products)
}

func (r *Router) GetV1product(res http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, models.ErrProductNotFound)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	found, err := r.service.GetProduct(req.Context(), id)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	errortranslator.RespondWithJSON(res, http.StatusOK, found)
}

// PutV1product replaces every field of a product but its id.
func (r *Router) PutV1product(res http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, models.ErrProductNotFound)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	var input models.ProductInput
	if err := decodeJSON(req, &input); err != nil {
		errortranslator.Respond(res, req, errortranslator.NewBadRequest(err))
		return
	}

	replaced, err := r.service.ReplaceProduct(req.Context(), id, input)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	errortranslator.RespondWithJSON(res, http.StatusOK, replaced)
}

func (r *Router) DeleteV1product(res http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, models.ErrProductNotFound)
	if err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	if err := r.service.DeleteProduct(req.Context(), id); err != nil {
		errortranslator.Respond(res, req, err)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}

func (r *Router) GetV1hello(res http.ResponseWriter, req *http.Request) {
	errortranslator.RespondWithJSON(res, http.StatusOK, r.service.Hello())
}

func (r *Router) GetV2hello(res http.ResponseWriter, req *http.Request) {
	errortranslator.RespondWithJSON(res, http.StatusOK, r.service.HelloV2())
}

// WithRecoverer turns a handler panic into a 500 envelope.
func WithRecoverer(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logger.Log.Errorln(
				"handler panicked",
				"request_id", logger.RequestID(request.Context()),
				"panic", rvr,
				zap.Stack("stack"),
			)
			errortranslator.Respond(response, request, &errortranslator.Error{
				Name:    errortranslator.NameInternal,
				Status:  http.StatusInternalServerError,
				Message: "internal error",
				Err:     fmt.Errorf("panic: %v", rvr),
			})
		}()

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}

// New builds the HTTP handler. Routes declared in the API document run
// behind its gate; the documentation routes do not.
func New(svc apiService, docs documentation) *chi.Mux {
	r := &Router{
		service: svc,
		docs:    docs,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		WithRecoverer,
		gzippedhttp.UngzipJSONRequest,
		gzippedhttp.GzipJSONResponse,
	)

	router.NotFound(func(res http.ResponseWriter, req *http.Request) {
		errortranslator.Respond(res, req, errortranslator.NewNotFound())
	})
	router.MethodNotAllowed(func(res http.ResponseWriter, req *http.Request) {
		errortranslator.Respond(res, req, errortranslator.NewMethodNotAllowed())
	})

	router.Get(`/`, r.GetRoot)
	router.Get(DocsPath, docs.ServeDocs)
	router.Get(DocsPath+`/`, docs.ServeDocs)
	router.Get(apispec.DocumentPath, docs.ServeDocument)

	router.Group(func(router chi.Router) {
		router.Use(docs.Gate)

		router.Post(`/users`, r.PostUsers)
		router.Get(`/users/{id}`, r.GetUser)
		router.Post(`/users/{id}`, r.PostUser)

		router.Post(`/v1/products`, r.PostV1products)
		router.Get(`/v1/products`, r.GetV1products)
		router.Get(`/v1/products/{id}`, r.GetV1product)
		router.Put(`/v1/products/{id}`, r.PutV1product)
		router.Delete(`/v1/products/{id}`, r.DeleteV1product)

		router.Get(`/v1/hello`, r.GetV1hello)
		router.Get(`/v2/hello`, r.GetV2hello)
	})

	return router
}
