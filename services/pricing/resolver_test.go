package pricing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/inyourvase/flowershop/lib/mycache"
	"github.com/inyourvase/flowershop/lib/mylog"
)

func TestNormalizeDestination(t *testing.T) {
	testCases := []struct {
		name       string
		rawAddress string
		expected   string
	}{
		{name: "postal code with space", rawAddress: "V2M 1V8", expected: "V2M 1V8, BC"},
		{name: "postal code without space", rawAddress: "V2M1V8", expected: "V2M 1V8, BC"},
		{name: "postal code embedded in street address", rawAddress: "123 Main St, Prince George V2M1V8", expected: "V2M 1V8, BC"},
		{name: "no postal code is used verbatim", rawAddress: "the old mill", expected: "the old mill, BC"},
		{name: "empty input", rawAddress: "", expected: ", BC"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeDestination(tc.rawAddress))
		})
	}
}

func TestResolve(t *testing.T) {
	c := context.TODO()

	t.Run("Resolve distance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		resolver, distanceAPI := setupResolver(t, ctrl)

		// given
		distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", "V2M 1V8, BC").Return(DistanceResult{
			Status:         "OK",
			ElementStatus:  "OK",
			DistanceMeters: 7000,
		}, nil)

		// when
		distanceKm, err := resolver.resolve(c, "V2M1V8")

		// then
		assert.NoError(t, err)
		assert.Equal(t, 7.0, distanceKm)
	})

	t.Run("Resolve distance, memoized on second lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		resolver, distanceAPI := setupResolver(t, ctrl)

		// given: collaborator is consulted exactly once
		distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", "V2M 1V8, BC").Return(DistanceResult{
			Status:         "OK",
			ElementStatus:  "OK",
			DistanceMeters: 7400,
		}, nil).Times(1)

		// when: same destination twice, spelled differently
		first, err := resolver.resolve(c, "V2M1V8")
		require.NoError(t, err)
		second, err := resolver.resolve(c, "V2M 1V8")

		// then
		assert.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, 7.4, second)
	})

	t.Run("Resolve distance, collaborator unreachable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		resolver, distanceAPI := setupResolver(t, ctrl)

		// given
		distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", gomock.Any()).Return(DistanceResult{}, fmt.Errorf("connection refused"))

		// when
		_, err := resolver.resolve(c, "V2M1V8")

		// then
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("Resolve distance, destination not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		resolver, distanceAPI := setupResolver(t, ctrl)

		// given
		distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", gomock.Any()).Return(DistanceResult{
			Status:        "OK",
			ElementStatus: "NOT_FOUND",
		}, nil)

		// when
		_, err := resolver.resolve(c, "nowhere at all")

		// then
		assert.ErrorIs(t, err, ErrInvalidDestination)
	})

	t.Run("Resolve distance, zero distance is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		resolver, distanceAPI := setupResolver(t, ctrl)

		// given
		distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", gomock.Any()).Return(DistanceResult{
			Status:        "OK",
			ElementStatus: "OK",
		}, nil)

		// when
		_, err := resolver.resolve(c, "V2M1V8")

		// then
		assert.ErrorIs(t, err, ErrInvalidDestination)
	})

	t.Run("Resolve distance, failure is not memoized", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		resolver, distanceAPI := setupResolver(t, ctrl)

		// given: first call fails, second succeeds
		gomock.InOrder(
			distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", "V2M 1V8, BC").Return(DistanceResult{}, fmt.Errorf("timeout")),
			distanceAPI.EXPECT().QueryDistance(gomock.Any(), "shop address", "V2M 1V8, BC").Return(DistanceResult{
				Status:         "OK",
				ElementStatus:  "OK",
				DistanceMeters: 7000,
			}, nil),
		)

		// when
		_, err := resolver.resolve(c, "V2M1V8")
		require.Error(t, err)
		distanceKm, err := resolver.resolve(c, "V2M1V8")

		// then
		assert.NoError(t, err)
		assert.Equal(t, 7.0, distanceKm)
	})
}

func setupResolver(t *testing.T, ctrl *gomock.Controller) (*distanceResolver, *MockDistanceMatrixAPI) {
	cache, cacheCleanup, err := mycache.NewInMemoryCache()
	require.NoError(t, err)
	t.Cleanup(cacheCleanup)

	distanceAPI := NewMockDistanceMatrixAPI(ctrl)

	return newDistanceResolver("shop address", distanceAPI, cache, mylog.New("resolver-test")), distanceAPI
}
