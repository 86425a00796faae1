package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/inyourvase/flowershop/lib/mypublisher"
	"github.com/inyourvase/flowershop/lib/mypubsub"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
	"github.com/inyourvase/flowershop/lib/myuuid"
	"github.com/inyourvase/flowershop/services/checkoutevents"
)

var (
	senderForm = url.Values{
		"name":  {"Alex Sender"},
		"phone": {"+1 250 555 0101"},
		"email": {"alex@example.com"},
	}
	recipientForm = url.Values{
		"firstName":  {"Robin"},
		"lastName":   {"Recipient"},
		"address":    {"456 Garden Ave"},
		"postalCode": {"V2M 1V8"},
		"city":       {"Prince George"},
		"country":    {"Canada"},
		"phone":      {"+1 250 555 0102"},
	}
)

type fixture struct {
	router      *mux.Router
	store       mystore.Store[CheckoutSession]
	cartTotaler *MockCartTotaler
	payer       *MockPayer
	publisher   *mypublisher.MockPublisher
	nower       *mytime.MockNower
	uuider      *myuuid.MockUUIDer
}

func TestCheckoutService(t *testing.T) {
	c := context.TODO()

	t.Run("Start checkout", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)

		// given
		f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(5800), 1, nil)
		f.uuider.EXPECT().Create().Return("session-1")
		f.nower.EXPECT().Now().Return(mytime.ExampleTime)

		// when
		response := doRequest(t, f.router, http.MethodPost, "/api/checkout/guest-123", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		session := sessionOf(t, response)
		assert.Equal(t, "session-1", session.UID)
		assert.Equal(t, CheckoutStepSenderInfo, session.Step)
		assert.Equal(t, SessionStatusActive, session.Status)
	})

	t.Run("Start checkout, empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)

		// given
		f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(0), 0, nil)

		// when
		response := doRequest(t, f.router, http.MethodPost, "/api/checkout/guest-123", "")

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, errorCodeCartEmpty, errorCodeOf(t, response))
	})

	t.Run("Submit sender info", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepSenderInfo})

		// when
		response := doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/sender", senderForm)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		session := sessionOf(t, response)
		assert.Equal(t, CheckoutStepRecipientInfo, session.Step)
		assert.Equal(t, "Alex Sender", session.Sender.Name)
	})

	t.Run("Submit sender info, missing phone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepSenderInfo})

		// when
		response := doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/sender", url.Values{"name": {"Alex"}})

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, errorCodeInvalidInput, errorCodeOf(t, response))
	})

	t.Run("Submit recipient info freezes total and creates one intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepRecipientInfo})
		f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(5800), 1, nil)
		f.payer.EXPECT().CreatePaymentIntent(gomock.Any(), int64(5800), "cad", gomock.Any()).Return(PaymentAuthorization{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret",
			Status:       "requires_payment_method",
		}, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			SessionUID:    "session-1",
			GuestUID:      "guest-123",
			AmountInCents: 5800,
			Currency:      "cad",
		}).Return(nil)

		// when
		response := doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/recipient", recipientForm)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		session := sessionOf(t, response)
		assert.Equal(t, CheckoutStepPayment, session.Step)
		assert.Equal(t, int64(5800), session.FrozenTotal)
		assert.Equal(t, "pi_123", session.PaymentIntentID)
		assert.Equal(t, "pi_123_secret", session.ClientSecret)
	})

	t.Run("Re-enter payment step with unchanged total reuses the intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given: one intent creation, no matter how often the step is entered
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepRecipientInfo})
		f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(5800), 1, nil).Times(2)
		f.payer.EXPECT().CreatePaymentIntent(gomock.Any(), int64(5800), "cad", gomock.Any()).Return(PaymentAuthorization{
			ID:           "pi_123",
			ClientSecret: "pi_123_secret",
		}, nil).Times(1)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(1)

		// when
		response := doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/recipient", recipientForm)
		require.Equal(t, http.StatusOK, response.Code)
		response = doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/recipient", recipientForm)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		assert.Equal(t, "pi_123", sessionOf(t, response).PaymentIntentID)
	})

	t.Run("Re-enter payment step with changed total replaces the intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given: cart grew between the two entries
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepRecipientInfo})
		gomock.InOrder(
			f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(5800), 1, nil),
			f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(8800), 2, nil),
		)
		f.payer.EXPECT().CreatePaymentIntent(gomock.Any(), int64(5800), "cad", gomock.Any()).Return(PaymentAuthorization{ID: "pi_old"}, nil)
		f.payer.EXPECT().CancelPaymentIntent(gomock.Any(), "pi_old").Return(nil)
		f.payer.EXPECT().CreatePaymentIntent(gomock.Any(), int64(8800), "cad", gomock.Any()).Return(PaymentAuthorization{ID: "pi_new"}, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)

		// when
		response := doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/recipient", recipientForm)
		require.Equal(t, http.StatusOK, response.Code)
		response = doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/recipient", recipientForm)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		session := sessionOf(t, response)
		assert.Equal(t, "pi_new", session.PaymentIntentID)
		assert.Equal(t, int64(8800), session.FrozenTotal)
	})

	t.Run("Submit recipient info, total below gateway minimum", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepRecipientInfo})
		f.cartTotaler.EXPECT().CartTotal(gomock.Any(), "guest-123").Return(int64(25), 1, nil)

		// when
		response := doForm(t, f.router, http.MethodPut, "/api/checkout/session-1/recipient", recipientForm)

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, errorCodeTotalBelowMinimum, errorCodeOf(t, response))
	})

	t.Run("Step back from payment retains data and intent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{
			UID:             "session-1",
			GuestUID:        "guest-123",
			Step:            CheckoutStepPayment,
			Sender:          SenderInfo{Name: "Alex Sender", Phone: "+1 250 555 0101"},
			PaymentIntentID: "pi_123",
			FrozenTotal:     5800,
		})

		// when
		response := doRequest(t, f.router, http.MethodPut, "/api/checkout/session-1/back", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		session := sessionOf(t, response)
		assert.Equal(t, CheckoutStepRecipientInfo, session.Step)
		assert.Equal(t, "Alex Sender", session.Sender.Name)
		assert.Equal(t, "pi_123", session.PaymentIntentID)
	})

	t.Run("Step back from start is refused", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{UID: "session-1", GuestUID: "guest-123", Step: CheckoutStepSenderInfo})

		// when
		response := doRequest(t, f.router, http.MethodPut, "/api/checkout/session-1/back", "")

		// then
		assert.Equal(t, http.StatusConflict, response.Code)
		assert.Equal(t, errorCodeWrongStep, errorCodeOf(t, response))
	})

	t.Run("Confirm payment succeeded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{
			UID:             "session-1",
			GuestUID:        "guest-123",
			Step:            CheckoutStepPayment,
			PaymentIntentID: "pi_123",
			FrozenTotal:     5800,
		})
		f.payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_123").Return(PaymentAuthorization{
			ID:     "pi_123",
			Status: "succeeded",
		}, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			SessionUID: "session-1",
			GuestUID:   "guest-123",
			Status:     "succeeded",
			Success:    true,
		}).Return(nil)

		// when
		response := doRequest(t, f.router, http.MethodPost, "/api/checkout/session-1/confirm", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		session := sessionOf(t, response)
		assert.Equal(t, CheckoutStepComplete, session.Step)
		assert.Equal(t, SessionStatusSucceeded, session.Status)
	})

	t.Run("Confirm payment declined, session stays at payment step", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)
		f.nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		storeSession(t, c, f, CheckoutSession{
			UID:             "session-1",
			GuestUID:        "guest-123",
			Step:            CheckoutStepPayment,
			PaymentIntentID: "pi_123",
			FrozenTotal:     5800,
		})
		f.payer.EXPECT().GetPaymentIntent(gomock.Any(), "pi_123").Return(PaymentAuthorization{
			ID:     "pi_123",
			Status: "requires_payment_method",
		}, nil)

		// when
		response := doRequest(t, f.router, http.MethodPost, "/api/checkout/session-1/confirm", "")

		// then: recoverable, guest can retry with another card
		assert.Equal(t, http.StatusPaymentRequired, response.Code)
		assert.Equal(t, errorCodePaymentNotCompleted, errorCodeOf(t, response))

		stored, found, err := f.store.Get(c, "session-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, CheckoutStepPayment, stored.Step)
		assert.Equal(t, SessionStatusActive, stored.Status)
	})

	t.Run("Get unknown session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		f := setup(t, c, ctrl)

		// when
		response := doRequest(t, f.router, http.MethodGet, "/api/checkout/no-such-session", "")

		// then
		assert.Equal(t, http.StatusNotFound, response.Code)
		assert.Equal(t, errorCodeSessionNotFound, errorCodeOf(t, response))
	})
}

func storeSession(t *testing.T, c context.Context, f fixture, session CheckoutSession) {
	err := f.store.Put(c, session.UID, session)
	require.NoError(t, err)
}

func doRequest(t *testing.T, router *mux.Router, method, target, body string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func doForm(t *testing.T, router *mux.Router, method, target string, form url.Values) *httptest.ResponseRecorder {
	request, err := http.NewRequest(method, target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func sessionOf(t *testing.T, response *httptest.ResponseRecorder) CheckoutSession {
	session := CheckoutSession{}
	err := json.Unmarshal(response.Body.Bytes(), &session)
	require.NoError(t, err)
	return session
}

func errorCodeOf(t *testing.T, response *httptest.ResponseRecorder) int {
	var body struct {
		ErrorCode int
		Message   string
	}
	err := json.Unmarshal(response.Body.Bytes(), &body)
	require.NoError(t, err)
	return body.ErrorCode
}

func setup(t *testing.T, c context.Context, ctrl *gomock.Controller) fixture {
	store, storeCleanup, err := mystore.NewInMemoryStore[CheckoutSession](c)
	require.NoError(t, err)
	t.Cleanup(storeCleanup)

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	require.NoError(t, err)
	t.Cleanup(pubsubCleanup)

	cartTotaler := NewMockCartTotaler(ctrl)
	payer := NewMockPayer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)

	sut := NewService(store, cartTotaler, payer, publisher, pubsub, nower, uuider)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	return fixture{
		router:      router,
		store:       store,
		cartTotaler: cartTotaler,
		payer:       payer,
		publisher:   publisher,
		nower:       nower,
		uuider:      uuider,
	}
}
