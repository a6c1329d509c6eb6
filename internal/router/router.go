package router

import (
	"net/http"
	"strings"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	adminAPIKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product handler function
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			productHandler.GetByID(w, r)
			return
		}
		productHandler.GetAll(w, r)
	}

	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Cart handler function
	cartRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case path == "/api/cart" || path == "/api/cart/":
			cartHandler.Get(w, r)
		case path == "/api/cart/merge":
			cartHandler.Merge(w, r)
		case path == "/api/cart/items":
			cartHandler.AddItem(w, r)
		case strings.HasPrefix(path, "/api/cart/items/"):
			switch r.Method {
			case http.MethodPut:
				cartHandler.UpdateItem(w, r)
			case http.MethodDelete:
				cartHandler.RemoveItem(w, r)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	mux.HandleFunc("/api/cart", cartRouteHandler)
	mux.HandleFunc("/api/cart/", cartRouteHandler)

	// Privileged order operations sit behind the admin API key.
	adminGuard := middleware.AdminAPIKey(adminAPIKey, logger)
	deliverHandler := adminGuard(http.HandlerFunc(orderHandler.Deliver))
	deleteHandler := adminGuard(http.HandlerFunc(orderHandler.Delete))

	// Order handler function
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if r.Method == http.MethodPost && (path == "/api/orders" || path == "/api/orders/") {
			orderHandler.Create(w, r)
			return
		}

		if strings.HasPrefix(path, "/api/orders/") && path != "/api/orders/" {
			switch {
			case strings.HasSuffix(path, "/pay"):
				orderHandler.Pay(w, r)
			case strings.HasSuffix(path, "/deliver"):
				deliverHandler.ServeHTTP(w, r)
			case r.Method == http.MethodDelete:
				deleteHandler.ServeHTTP(w, r)
			default:
				orderHandler.GetByID(w, r)
			}
			return
		}

		http.Error(w, "not found", http.StatusNotFound)
	}

	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> UserContext
	var h http.Handler = mux
	h = middleware.UserContext(logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
