package checkout

import (
	"context"
	"errors"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/inyourvase/flowershop/lib/mycontext"
	"github.com/inyourvase/flowershop/lib/myerrors"
	"github.com/inyourvase/flowershop/lib/myhttp"
	"github.com/inyourvase/flowershop/lib/mylog"
	"github.com/inyourvase/flowershop/lib/mypublisher"
	"github.com/inyourvase/flowershop/lib/mypubsub"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
	"github.com/inyourvase/flowershop/lib/myuuid"
)

// Error codes distinguish the failure kinds in the response shape:
// 1x validation, 2x integration, 3x domain-policy.
const (
	errorCodeInvalidInput        = 10
	errorCodeTotalBelowMinimum   = 11
	errorCodeCartEmpty           = 12
	errorCodeSessionNotFound     = 13
	errorCodeGatewayUnavailable  = 20
	errorCodeWrongStep           = 30
	errorCodePaymentNotCompleted = 31
	errorCodeInternal            = 99
)

type webService struct {
	service *service
	logger  mylog.Logger
}

func NewService(store mystore.Store[CheckoutSession], cartTotaler CartTotaler, payer Payer, publisher mypublisher.Publisher, pubsub mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *webService {
	logger := mylog.New("checkout")
	return &webService{
		service: newService(store, cartTotaler, payer, publisher, pubsub, nower, uuider, logger),
		logger:  logger,
	}
}

func (s *webService) Subscribe(c context.Context) error {
	return s.service.Subscribe(c)
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/checkout/{guestUID}", s.startPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{sessionUID}", s.sessionPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{sessionUID}/sender", s.senderPage()).Methods("PUT")
	router.HandleFunc("/api/checkout/{sessionUID}/recipient", s.recipientPage()).Methods("PUT")
	router.HandleFunc("/api/checkout/{sessionUID}/back", s.backPage()).Methods("PUT")
	router.HandleFunc("/api/checkout/{sessionUID}/confirm", s.confirmPage()).Methods("POST")
}

func (s *webService) startPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		guestUID := mux.Vars(r)["guestUID"]

		session, err := s.service.startCheckout(c, guestUID)
		if err != nil {
			responseWriter.WriteError(c, w, checkoutErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) sessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		sessionUID := mux.Vars(r)["sessionUID"]

		session, err := s.service.getSession(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, checkoutErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) senderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		sessionUID := mux.Vars(r)["sessionUID"]

		sender := SenderInfo{}
		err := decodeForm(r, &sender)
		if err != nil {
			responseWriter.WriteError(c, w, errorCodeInvalidInput, err)
			return
		}

		session, err := s.service.submitSender(c, sessionUID, sender)
		if err != nil {
			responseWriter.WriteError(c, w, checkoutErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) recipientPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		sessionUID := mux.Vars(r)["sessionUID"]

		recipient := RecipientInfo{}
		err := decodeForm(r, &recipient)
		if err != nil {
			responseWriter.WriteError(c, w, errorCodeInvalidInput, err)
			return
		}

		session, err := s.service.submitRecipient(c, sessionUID, recipient)
		if err != nil {
			responseWriter.WriteError(c, w, checkoutErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) backPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		sessionUID := mux.Vars(r)["sessionUID"]

		session, err := s.service.stepBack(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, checkoutErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *webService) confirmPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		sessionUID := mux.Vars(r)["sessionUID"]

		session, err := s.service.confirmPayment(c, sessionUID)
		if err != nil {
			responseWriter.WriteError(c, w, checkoutErrorCode(err), err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func decodeForm(r *http.Request, target interface{}) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	err = formcodec.NewDecoder().Decode(target, r.Form)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	return nil
}

func checkoutErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrWrongStep):
		return errorCodeWrongStep
	case errors.Is(err, ErrPaymentNotCompleted):
		return errorCodePaymentNotCompleted
	case errors.Is(err, ErrTotalBelowMinimum):
		return errorCodeTotalBelowMinimum
	case errors.Is(err, ErrCartEmpty):
		return errorCodeCartEmpty
	case myerrors.GetHttpStatus(err) == http.StatusNotFound:
		return errorCodeSessionNotFound
	case myerrors.GetHttpStatus(err) == http.StatusServiceUnavailable:
		return errorCodeGatewayUnavailable
	case myerrors.GetHttpStatus(err) == http.StatusBadRequest:
		return errorCodeInvalidInput
	default:
		return errorCodeInternal
	}
}
