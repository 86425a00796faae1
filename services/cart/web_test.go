package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	"github.com/inyourvase/flowershop/services/checkoutevents"
)

var (
	bouquetDelivered = CartItem{
		ProductID:  "bouquet-roses",
		Name:       "Dozen roses",
		Size:       "large",
		UnitPrice:  5000,
		Quantity:   1,
		IsDelivery: true,
		// $8 tier
		DeliveryCost: 800,
		PostalCode:   "V2M 1V8",
		CardMessage:  "Happy birthday!",
		DeliveryDate: "2026-03-08",
	}
	bouquetPickup = CartItem{
		ProductID: "bouquet-tulips",
		Name:      "Spring tulips",
		Size:      "small",
		UnitPrice: 3000,
		Quantity:  1,
	}
)

func TestCartService(t *testing.T) {
	c := context.TODO()

	t.Run("Get cart, absent guest gets an empty cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, _, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		response := doRequest(t, router, http.MethodGet, "/api/cart/guest-123", "")

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		resp := cartResponseOf(t, response)
		assert.Empty(t, resp.Cart.Items)
		assert.Nil(t, resp.Cart.DeliveryMode)
		assert.Equal(t, 0, resp.TotalInCents)
	})

	t.Run("Append delivery item, total includes delivery cost", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, _, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// when
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetDelivered))

		// then: 5000 + 800 delivery
		assert.Equal(t, http.StatusOK, response.Code)
		resp := cartResponseOf(t, response)
		assert.Equal(t, 5800, resp.TotalInCents)
		require.NotNil(t, resp.Cart.DeliveryMode)
		assert.True(t, *resp.Cart.DeliveryMode)
	})

	t.Run("Append item with upsells, total adds them in", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, _, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		item := bouquetDelivered
		item.Upsells = []Upsell{
			{Name: "vase", UnitPrice: 1500, Quantity: 2},
			{Name: "chocolates", UnitPrice: 0, Quantity: 0},
		}

		// when
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, item))

		// then: 5000 + 2x1500 + 800, zero-quantity upsell dropped
		assert.Equal(t, http.StatusOK, response.Code)
		resp := cartResponseOf(t, response)
		assert.Equal(t, 8800, resp.TotalInCents)
		require.Len(t, resp.Cart.Items, 1)
		require.Len(t, resp.Cart.Items[0].Upsells, 1)
		assert.Equal(t, "vase", resp.Cart.Items[0].Upsells[0].Name)
	})

	t.Run("Append item with conflicting delivery mode, cart unchanged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, store, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given: a delivery cart
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetDelivered))
		require.Equal(t, http.StatusOK, response.Code)

		// when: a pickup item arrives
		response = doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetPickup))

		// then: rejected as a policy conflict and the stored cart kept its single item
		assert.Equal(t, http.StatusConflict, response.Code)
		assert.Equal(t, errorCodeDeliveryModeConflict, errorCodeOf(t, response))

		stored, found, err := store.Get(c, "guest-123")
		require.NoError(t, err)
		require.True(t, found)
		assert.Len(t, stored.Items, 1)
		assert.Equal(t, "bouquet-roses", stored.Items[0].ProductID)
	})

	t.Run("Replace cart with empty list resets delivery mode", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, _, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetDelivered))
		require.Equal(t, http.StatusOK, response.Code)

		// when: clear, then add a pickup item
		response = doRequest(t, router, http.MethodPut, "/api/cart/guest-123", "[]")
		require.Equal(t, http.StatusOK, response.Code)
		assert.Nil(t, cartResponseOf(t, response).Cart.DeliveryMode)

		response = doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetPickup))

		// then: the mode restriction was lifted by the reset
		assert.Equal(t, http.StatusOK, response.Code)
		resp := cartResponseOf(t, response)
		require.NotNil(t, resp.Cart.DeliveryMode)
		assert.False(t, *resp.Cart.DeliveryMode)
	})

	t.Run("Replace cart validates every item", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, _, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given: second item carries a delivery cost without being a delivery
		broken := bouquetPickup
		broken.DeliveryCost = 800

		// when
		response := doRequest(t, router, http.MethodPut, "/api/cart/guest-123", asJSON(t, []CartItem{bouquetDelivered, broken}))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, errorCodeInvalidItem, errorCodeOf(t, response))
	})

	t.Run("Append item with oversized card message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, _, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		item := bouquetDelivered
		item.CardMessage = strings.Repeat("x", maxCardMessageLength+1)

		// when
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, item))

		// then
		assert.Equal(t, http.StatusBadRequest, response.Code)
		assert.Equal(t, errorCodeInvalidItem, errorCodeOf(t, response))
	})

	t.Run("Checkout completed event clears the cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, store, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetDelivered))
		require.Equal(t, http.StatusOK, response.Code)

		// when
		body := mypublisher.CreatePubsubMessage(checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			SessionUID: "session-1",
			GuestUID:   "guest-123",
			Status:     "succeeded",
			Success:    true,
		})
		response = doRequest(t, router, http.MethodPost, "/api/cart/event", body)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		stored, found, err := store.Get(c, "guest-123")
		require.NoError(t, err)
		require.True(t, found)
		assert.Empty(t, stored.Items)
		assert.Nil(t, stored.DeliveryMode)
	})

	t.Run("Checkout failed event leaves the cart alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		router, store, nower := setup(t, c, ctrl)
		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		// given
		response := doRequest(t, router, http.MethodPost, "/api/cart/guest-123/items", asJSON(t, bouquetDelivered))
		require.Equal(t, http.StatusOK, response.Code)

		// when
		body := mypublisher.CreatePubsubMessage(checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			SessionUID: "session-1",
			GuestUID:   "guest-123",
			Status:     "requires_payment_method",
			Success:    false,
		})
		response = doRequest(t, router, http.MethodPost, "/api/cart/event", body)

		// then
		assert.Equal(t, http.StatusOK, response.Code)
		stored, _, err := store.Get(c, "guest-123")
		require.NoError(t, err)
		assert.Len(t, stored.Items, 1)
	})
}

func TestCartTotal(t *testing.T) {
	// given: a delivered bouquet with upsells next to a pickup bouquet
	delivered := bouquetDelivered
	delivered.Upsells = []Upsell{{Name: "vase", UnitPrice: 1500, Quantity: 2}}
	cart := Cart{Items: []CartItem{delivered, bouquetPickup}}

	// then: 5000+3000+800+1500+1500
	assert.Equal(t, 11800, cart.Total())
}

func doRequest(t *testing.T, router *mux.Router, method, url, body string) *httptest.ResponseRecorder {
	request, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	return response
}

func asJSON(t *testing.T, value interface{}) string {
	data, err := json.Marshal(value)
	require.NoError(t, err)
	return string(data)
}

func cartResponseOf(t *testing.T, response *httptest.ResponseRecorder) CartResponse {
	resp := CartResponse{}
	err := json.Unmarshal(response.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
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

func setup(t *testing.T, c context.Context, ctrl *gomock.Controller) (*mux.Router, mystore.Store[Cart], *mytime.MockNower) {
	store, storeCleanup, err := mystore.NewInMemoryStore[Cart](c)
	require.NoError(t, err)
	t.Cleanup(storeCleanup)

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	require.NoError(t, err)
	t.Cleanup(pubsubCleanup)

	nower := mytime.NewMockNower(ctrl)

	sut := NewService(store, pubsub, nower)
	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	return router, store, nower
}
