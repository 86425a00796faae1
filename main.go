package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/inyourvase/flowershop/lib/mycache"
	"github.com/inyourvase/flowershop/lib/mypublisher"
	"github.com/inyourvase/flowershop/lib/mypubsub"
	"github.com/inyourvase/flowershop/lib/myqueue"
	"github.com/inyourvase/flowershop/lib/mystore"
	"github.com/inyourvase/flowershop/lib/mytime"
	"github.com/inyourvase/flowershop/lib/myuuid"
	"github.com/inyourvase/flowershop/services/cart"
	"github.com/inyourvase/flowershop/services/checkout"
	"github.com/inyourvase/flowershop/services/pricing"
	"github.com/inyourvase/flowershop/services/sessioncleanup"
)

const defaultSessionTTL = 30 * time.Minute

func main() {
	c := context.Background()

	// A missing .env file is fine: on gcloud everything comes from real env vars
	_ = godotenv.Load()

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	cache, cacheCleanup, err := mycache.New(c)
	if err != nil {
		log.Fatalf("Error creating cache: %s", err)
	}
	defer cacheCleanup()

	tierStore, tierStoreCleanup, err := mystore.New[pricing.DeliveryCostTier](c)
	if err != nil {
		log.Fatalf("Error creating tier store: %s", err)
	}
	defer tierStoreCleanup()

	err = pricing.Seed(c, tierStore)
	if err != nil {
		log.Fatalf("Error seeding delivery cost tiers: %s", err)
	}

	distanceAPI := pricing.NewGoogleMapsClient(os.Getenv("GOOGLE_MAPS_API_KEY"))
	pricingService := pricing.NewService(pricing.NewTierSource(tierStore), os.Getenv("SHOP_ORIGIN_ADDRESS"), distanceAPI, cache)
	pricingService.RegisterEndpoints(c, router)

	cartStore, cartStoreCleanup, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartStoreCleanup()

	cartService := cart.NewService(cartStore, pubsub, nower)
	cartService.RegisterEndpoints(c, router)

	sessionStore, sessionStoreCleanup, err := mystore.New[checkout.CheckoutSession](c)
	if err != nil {
		log.Fatalf("Error creating session store: %s", err)
	}
	defer sessionStoreCleanup()

	payer := checkout.NewPayer()
	payer.UseAPIKey(os.Getenv("STRIPE_API_KEY"))

	checkoutService := checkout.NewService(sessionStore, cart.NewTotaler(cartStore), payer, publisher, pubsub, nower, uuider)
	checkoutService.RegisterEndpoints(c, router)

	err = checkoutService.Subscribe(c)
	if err != nil {
		log.Fatalf("Error subscribing checkout service: %s", err)
	}
	err = cartService.Subscribe(c)
	if err != nil {
		log.Fatalf("Error subscribing cart service: %s", err)
	}

	sweeper := sessioncleanup.NewSweeper(sessionStore, sessionTTL(), nower)
	err = sweeper.Start()
	if err != nil {
		log.Fatalf("Error starting session sweeper: %s", err)
	}
	defer sweeper.Stop()

	startWebServerBlocking(router)
}

func sessionTTL() time.Duration {
	value := os.Getenv("SESSION_TTL")
	if value == "" {
		return defaultSessionTTL
	}

	ttl, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Error parsing SESSION_TTL %q: %s", value, err)
	}

	return ttl
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
