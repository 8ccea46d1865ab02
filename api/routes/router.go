package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dispatchday/dispatchday-backend/api/controllers"
	"github.com/dispatchday/dispatchday-backend/api/middleware"
	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/internal/deliveries"
	"github.com/dispatchday/dispatchday-backend/internal/fields"
	"github.com/dispatchday/dispatchday-backend/internal/notifications"
	"github.com/dispatchday/dispatchday-backend/internal/schedules"
	"github.com/dispatchday/dispatchday-backend/internal/stores"
	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/db"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
	"github.com/dispatchday/dispatchday-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	storeService stores.Service,
	scheduleService schedules.Service,
	fieldService fields.Service,
	checkoutService checkout.Service,
	deliveryService deliveries.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	// Storefront surface: authenticated per request with the store's API key.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.StorefrontCORS())
		r.Use(middleware.APIKeyAuth(storeService, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/fields", controllers.CheckoutFields(checkoutService, logg))
			r.Post("/dates", controllers.CheckoutDates(checkoutService, logg))
			r.Post("/validate", controllers.CheckoutValidate(checkoutService, logg))
		})
		r.Post("/deliveries", controllers.CreateDelivery(deliveryService, logg))
	})

	// Merchant dashboard surface: JWT auth plus per-store access checks.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.CORS())
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/stores", func(r chi.Router) {
			r.With(middleware.RequireRole("admin", logg)).Post("/", controllers.CreateStore(storeService, logg))
			r.With(middleware.RequireRole("admin", logg)).Get("/", controllers.ListStores(storeService, logg))

			r.Route("/{storeId}", func(r chi.Router) {
				r.Use(middleware.RequireStoreAccess(logg))

				r.Get("/", controllers.GetStore(storeService, logg))
				r.Patch("/", controllers.UpdateStore(storeService, logg))
				r.Post("/api-key/rotate", controllers.RotateStoreAPIKey(storeService, logg))

				r.Route("/schedules/{method}", func(r chi.Router) {
					r.Get("/", controllers.GetSchedule(scheduleService, logg))
					r.Put("/", controllers.UpsertSchedule(scheduleService, logg))
				})

				r.Route("/fields", func(r chi.Router) {
					r.Get("/", controllers.ListFields(fieldService, logg))
					r.Post("/", controllers.CreateField(fieldService, logg))
					r.Patch("/{fieldId}", controllers.UpdateField(fieldService, logg))
					r.Delete("/{fieldId}", controllers.DeleteField(fieldService, logg))
				})

				r.Route("/deliveries", func(r chi.Router) {
					r.Get("/", controllers.ListDeliveries(deliveryService, logg))
					r.Get("/calendar", controllers.DeliveryCalendar(deliveryService, logg))
					r.Get("/summary", controllers.DeliverySummary(deliveryService, logg))
					r.Get("/{deliveryId}", controllers.GetDelivery(deliveryService, logg))
					r.Patch("/{deliveryId}/status", controllers.UpdateDeliveryStatus(deliveryService, logg))
				})

				r.Route("/notifications", func(r chi.Router) {
					r.Get("/", controllers.ListNotifications(notificationsService, logg))
					r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
					r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
				})
			})
		})
	})

	return r
}
