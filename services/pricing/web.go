package pricing

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inyourvase/flowershop/lib/mycache"
	"github.com/inyourvase/flowershop/lib/mycontext"
	"github.com/inyourvase/flowershop/lib/myhttp"
	"github.com/inyourvase/flowershop/lib/mylog"
)

// Error codes distinguish the failure kinds in the response shape:
// 1x validation, 2x integration, 3x domain-policy.
const (
	errorCodeMissingAddress     = 10
	errorCodeInvalidDestination = 11
	errorCodeServiceUnavailable = 20
	errorCodeOutOfArea          = 30
	errorCodeInternal           = 99
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(tierSource TierSource, origin string, api DistanceMatrixAPI, cache mycache.Cache) *webService {
	logger := mylog.New("pricing")
	return &webService{
		service: newService(tierSource, origin, api, cache, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/quote", s.quotePage()).Methods("GET")
}

func (s *webService) quotePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		address := r.URL.Query().Get("address")

		quote, err := s.service.getQuote(c, address)
		if err != nil {
			responseWriter.WriteError(c, w, quoteErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, quote)
	}
}

func quoteErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrOutOfArea):
		return errorCodeOutOfArea
	case errors.Is(err, ErrServiceUnavailable):
		return errorCodeServiceUnavailable
	case errors.Is(err, ErrInvalidDestination):
		return errorCodeInvalidDestination
	case myErrIsValidation(err):
		return errorCodeMissingAddress
	default:
		return errorCodeInternal
	}
}

func myErrIsValidation(err error) bool {
	type coder interface{ GetHTTPErrorCode() int }
	c, ok := err.(coder)
	return ok && c.GetHTTPErrorCode() == http.StatusBadRequest
}
