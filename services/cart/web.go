package cart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inyourvase/flowershop/lib/mycontext"
	"github.com/inyourvase/flowershop/lib/myhttp"
	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/lib/mypubsub"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
	"github.com/inyourvase/flowershop/services/checkoutevents"
)

// Error codes distinguish the failure kinds in the response shape:
// 1x validation, 3x domain-policy.
const (
	errorCodeInvalidItem          = 10
	errorCodeDeliveryModeConflict = 30
	errorCodeInternal             = 99
)

type CartResponse struct {
	Cart         Cart
	TotalInCents int
}

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(store mystore.Store[Cart], pubsub mypubsub.PubSub, nower mytime.Nower) *webService {
	logger := mylog.New("cart")
	return &webService{
		service: newService(store, pubsub, nower, logger),
		logger:  logger,
	}
}

func (s *webService) Subscribe(c context.Context) error {
	return s.service.Subscribe(c)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/cart/event", s.eventPage()).Methods("POST")
	router.HandleFunc("/api/cart/{guestUID}", s.getCartPage()).Methods("GET")
	router.HandleFunc("/api/cart/{guestUID}", s.replaceCartPage()).Methods("PUT")
	router.HandleFunc("/api/cart/{guestUID}/items", s.appendItemPage()).Methods("POST")
}

func (s *webService) getCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		guestUID := mux.Vars(r)["guestUID"]

		cart, err := s.service.getCart(c, guestUID)
		if err != nil {
			responseWriter.WriteError(c, w, errorCodeInternal, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, CartResponse{
			Cart:         cart,
			TotalInCents: cart.Total(),
		})
	}
}

func (s *webService) replaceCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		guestUID := mux.Vars(r)["guestUID"]

		items := []CartItem{}
		err := json.NewDecoder(r.Body).Decode(&items)
		if err != nil {
			responseWriter.WriteError(c, w, errorCodeInvalidItem, err)
			return
		}

		cart, err := s.service.replaceItems(c, guestUID, items)
		if err != nil {
			responseWriter.WriteError(c, w, cartErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, CartResponse{
			Cart:         cart,
			TotalInCents: cart.Total(),
		})
	}
}

func (s *webService) appendItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		guestUID := mux.Vars(r)["guestUID"]

		item := CartItem{}
		err := json.NewDecoder(r.Body).Decode(&item)
		if err != nil {
			responseWriter.WriteError(c, w, errorCodeInvalidItem, err)
			return
		}

		cart, err := s.service.appendItem(c, guestUID, item)
		if err != nil {
			responseWriter.WriteError(c, w, cartErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, CartResponse{
			Cart:         cart,
			TotalInCents: cart.Total(),
		})
	}
}

func (s *webService) eventPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			responseWriter.WriteError(c, w, errorCodeInternal, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func cartErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrDeliveryModeConflict):
		return errorCodeDeliveryModeConflict
	case isValidationError(err):
		return errorCodeInvalidItem
	default:
		return errorCodeInternal
	}
}

func isValidationError(err error) bool {
	type coder interface{ GetHTTPErrorCode() int }
	c, ok := err.(coder)
	return ok && c.GetHTTPErrorCode() == http.StatusBadRequest
}
