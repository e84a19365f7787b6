package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopcart/lib/myevents"
	"github.com/MarcGrol/shopcart/lib/myhttpclient"
	"github.com/MarcGrol/shopcart/lib/mymetrics"
	"github.com/MarcGrol/shopcart/lib/mypublisher"
	"github.com/MarcGrol/shopcart/lib/mypubsub"
	"github.com/MarcGrol/shopcart/lib/myqueue"
	"github.com/MarcGrol/shopcart/lib/mystore"
	"github.com/MarcGrol/shopcart/lib/mytime"
	"github.com/MarcGrol/shopcart/lib/myuuid"
	"github.com/MarcGrol/shopcart/lib/myvault"
	"github.com/MarcGrol/shopcart/services/cart"
	"github.com/MarcGrol/shopcart/services/catalog"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()

	vault, vaultCleanup, err := myvault.New(c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}
	defer vaultCleanup()

	err = myvault.Seed(c, vault, myvault.CatalogToken, os.Getenv("CATALOG_TOKEN"))
	if err != nil {
		log.Fatalf("Error storing catalog token: %s", err)
	}

	products := createCatalog(c, router, vault)

	publisher, subscriber, publisherCleanup := createPublisher(c, router)
	defer publisherCleanup()

	cartKey := getenv("CART_KEY", cart.DefaultKey)

	blobs, blobsCleanup, err := mystore.New[cart.Snapshot](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer blobsCleanup()

	metrics := mymetrics.New("shopcart", "cart")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	notifier := cart.NewPublishingNotifier(cartKey, publisher, myuuid.RealUUIDer{}, mytime.RealNower{})
	cartStore, err := cart.NewStore(c, cartKey, blobs, products, notifier, mytime.RealNower{}, metrics)
	if err != nil {
		log.Fatalf("Error loading cart %s: %s", cartKey, err)
	}

	err = cart.NewWebService(cartStore, cart.NewFeed(publisher, subscriber)).RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart endpoints: %s", err)
	}

	startWebServerBlocking(router)
}

// createCatalog returns the remote catalog when CATALOG_URL is set, otherwise an
// in-process fake that is also served under /catalog
func createCatalog(c context.Context, router *mux.Router, vault myvault.Vault) catalog.Catalog {
	catalogURL := os.Getenv("CATALOG_URL")
	if catalogURL != "" {
		log.Printf("Using catalog at %s", catalogURL)
		return catalog.NewHTTPCatalog(catalogURL, myhttpclient.New(), vault)
	}

	fake := catalog.NewFakeCatalog()
	catalog.NewWebService(fake, vault).RegisterEndpoints(c, router.PathPrefix("/catalog").Subrouter())
	log.Printf("Using in-process catalog with %d products", len(catalog.DemoProducts))

	return fake
}

func createPublisher(c context.Context, router *mux.Router) (mypublisher.Publisher, mypubsub.PubSub, func()) {
	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating queue: %s", err)
	}

	outbox, outboxCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		log.Fatalf("Error creating outbox: %s", err)
	}

	publisher := mypublisher.New(outbox, pubsub, queue, mytime.RealNower{})
	publisher.RegisterEndpoints(c, router)

	return publisher, pubsub, func() {
		outboxCleanup()
		queueCleanup()
		pubsubCleanup()
	}
}

func getenv(name string, defaultValue string) string {
	value := os.Getenv(name)
	if value == "" {
		return defaultValue
	}
	return value
}

func startWebServerBlocking(router *mux.Router) {
	port := getenv("PORT", "8080")

	log.Printf("Starting webserver on port %s (try http://localhost:%s/api/cart)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
