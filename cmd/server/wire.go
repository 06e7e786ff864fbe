package main

import (
	"context"
	"fmt"

	"wearxture_back_end/internal/auth"
	"wearxture_back_end/internal/cache"
	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/config"
	"wearxture_back_end/internal/database"
	"wearxture_back_end/internal/handlers/admin"
	paymenthandler "wearxture_back_end/internal/handlers/payment"
	"wearxture_back_end/internal/handlers/product"
	"wearxture_back_end/internal/handlers/user"
	"wearxture_back_end/internal/notify"
	"wearxture_back_end/internal/orders"
	"wearxture_back_end/internal/payment"
	"wearxture_back_end/internal/repository"
	"wearxture_back_end/internal/routes"
	"wearxture_back_end/internal/scheduler"
	"wearxture_back_end/internal/services"
	"wearxture_back_end/internal/shipping"
	"wearxture_back_end/internal/support"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type app struct {
	router    *gin.Engine
	scheduler *scheduler.Scheduler
	closers   []func()
}

func (a *app) Close() {
	if err := a.scheduler.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("⚠️ Arrêt du planificateur incomplet")
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// stores regroupe les dépôts, ScyllaDB ou mémoire.
type stores struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	reels      repository.ReelRepository
	orders     repository.OrderRepository
	users      repository.UserRepository
	support    repository.SupportRepository
	wishlist   repository.WishlistRepository
	ping       routes.HealthCheck
}

func openStores(cfg config.ScyllaConfig) (*stores, func(), error) {
	if !cfg.Enabled() {
		log.Warn().Msg("⚠️ ScyllaDB non configuré, stockage en mémoire")
		m := repository.NewMemoryStore()
		return &stores{
			products:   m.Products,
			categories: m.Categories,
			reels:      m.Reels,
			orders:     m.Orders,
			users:      m.Users,
			support:    m.Support,
			wishlist:   m.Wishlist,
		}, func() {}, nil
	}

	sm, err := database.NewScyllaManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	productsSession, err := sm.Products()
	if err != nil {
		sm.Close()
		return nil, nil, err
	}
	usersSession, err := sm.Users()
	if err != nil {
		sm.Close()
		return nil, nil, err
	}
	ordersSession, err := sm.Orders()
	if err != nil {
		sm.Close()
		return nil, nil, err
	}
	log.Info().Msg("✅ ScyllaDB connecté")
	return &stores{
		products:   repository.NewScyllaProductRepository(productsSession),
		categories: repository.NewScyllaCategoryRepository(productsSession),
		reels:      repository.NewScyllaReelRepository(productsSession),
		orders:     repository.NewScyllaOrderRepository(ordersSession),
		users:      repository.NewScyllaUserRepository(usersSession),
		support:    repository.NewScyllaSupportRepository(usersSession),
		wishlist:   repository.NewScyllaWishlistRepository(usersSession),
		ping: func(ctx context.Context) error {
			return ordersSession.Query("SELECT now() FROM system.local").WithContext(ctx).Exec()
		},
	}, sm.Close, nil
}

func build(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	health := map[string]routes.HealthCheck{}

	st, closeStores, err := openStores(cfg.Scylla)
	if err != nil {
		return nil, fmt.Errorf("scylla: %w", err)
	}
	a.closers = append(a.closers, closeStores)
	if st.ping != nil {
		health["scylla"] = st.ping
	}

	// Redis porte le panier, le cache, les limites de débit et le direct.
	var (
		redisClient *redis.Client
		store       *cache.Store
	)
	if client, err := database.ConnectRedis(ctx, cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis indisponible: panier, cache et suivi en direct désactivés")
	} else {
		redisClient = client
		store = cache.NewStore(client)
		a.closers = append(a.closers, func() { client.Close() })
		health["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}

	// Catalogue
	catalogDeps := catalog.Deps{
		Products:   st.products,
		Categories: st.categories,
		Reels:      st.reels,
		Wishlist:   st.wishlist,
	}
	if store != nil {
		catalogDeps.Cache = cache.NewProductCache(store)
	}
	minioClient, err := database.ConnectMinIO(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	if storage := services.NewObjectStorage(minioClient, cfg.MinIO); storage != nil {
		catalogDeps.Storage = storage
	}
	esClient, err := database.ConnectElastic(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Elasticsearch indisponible, recherche en mémoire")
	} else if index := services.NewElasticIndex(esClient, cfg.Elastic.Index); index != nil {
		catalogDeps.Index = index
	}
	catalogSvc := catalog.NewService(catalogDeps)

	// Événements de commande
	var (
		publishers services.FanOut
		feed       *services.RedisPublisher
	)
	if redisClient != nil {
		feed = services.NewRedisPublisher(redisClient)
		publishers = append(publishers, feed)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := services.NewKafkaPublisher(cfg.Kafka)
		publishers = append(publishers, kafka)
		a.closers = append(a.closers, func() {
			if err := kafka.Close(); err != nil {
				log.Warn().Err(err).Msg("⚠️ Fermeture Kafka")
			}
		})
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("✅ Publication Kafka activée")
	}

	// Emails et factures
	frontendURL := cfg.Server.FrontendURL
	if frontendURL == "" {
		frontendURL = cfg.Server.BaseURL
	}
	notifier := notify.NewService(
		notify.NewMailer(cfg.Mail, cfg.Shop.Name),
		notify.ChromePDF{Timeout: cfg.Server.UpstreamTimeout},
		cfg.Shop,
		frontendURL,
	)

	// Paiement
	gateway, err := payment.NewGateway(cfg.Payment, cfg.Server)
	if err != nil {
		return nil, err
	}

	orderDeps := orders.Deps{
		Orders:        st.orders,
		Products:      st.products,
		Payments:      payment.NewStarter(gateway, cfg.Payment.Currency),
		Notifier:      notifier,
		Pricing:       orders.PricingFromConfig(cfg.Shop),
		OrderIDPrefix: cfg.Shop.OrderIDPrefix,
	}
	if len(publishers) > 0 {
		orderDeps.Events = publishers
	}
	if store != nil {
		orderDeps.Carts = cache.NewCartStore(store)
	}
	orderSvc := orders.NewService(orderDeps)

	// Transport
	var shipper *shipping.Service
	if cfg.Shipping.Enabled() {
		var tokens shipping.TokenCache
		if store != nil {
			tokens = store
		}
		client := shipping.NewClient(cfg.Shipping, tokens, cfg.Server.UpstreamTimeout)
		shipper = shipping.NewService(client, st.orders, orderSvc)
		log.Info().Msg("✅ Shiprocket configuré")
	} else {
		log.Warn().Msg("⚠️ Shiprocket non configuré, expédition manuelle")
	}

	bridgeDeps := payment.BridgeDeps{
		Gateway:   gateway,
		Orders:    st.orders,
		Confirmer: orderSvc,
		Notifier:  notifier,
		Async:     true,
	}
	if shipper != nil {
		bridgeDeps.Shipper = shipper
	}
	bridge := payment.NewBridge(bridgeDeps)

	var webhook paymenthandler.WebhookParser
	if s, ok := gateway.(*payment.Stripe); ok {
		webhook = s
	}

	// Comptes
	authSvc := auth.NewService(st.users,
		auth.NewTokenIssuer(cfg.Auth.JWTSecret, auth.CustomerAudience, cfg.Auth.TokenTTL, cfg.Auth.RememberTTL),
		auth.NewTokenIssuer(cfg.Auth.AdminJWTSecret, auth.AdminAudience, cfg.Auth.TokenTTL, cfg.Auth.RememberTTL))
	if err := authSvc.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return nil, fmt.Errorf("compte administrateur: %w", err)
	}
	oauthWeb := auth.SetupGoth(cfg)

	supportSvc := support.NewService(st.support)

	// HTTP
	userDeps := user.Deps{
		Auth:           authSvc,
		OAuthWeb:       oauthWeb,
		Catalog:        catalogSvc,
		Orders:         orderSvc,
		Support:        supportSvc,
		Invoices:       notifier,
		Welcome:        notifier,
		SecureCookies:  cfg.Auth.SecureCookies,
		FrontendURL:    cfg.Server.FrontendURL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	if cfg.OAuth.GoogleEnabled() {
		userDeps.Google = auth.NewGoogleProvider(cfg)
	}
	if store != nil {
		userDeps.Carts = cache.NewCartStore(store)
	}
	if feed != nil {
		userDeps.Feed = feed
	}
	adminDeps := admin.Deps{
		Auth:          authSvc,
		Catalog:       catalogSvc,
		Orders:        orderSvc,
		Support:       supportSvc,
		Invoicer:      notifier,
		SecureCookies: cfg.Auth.SecureCookies,
	}
	if shipper != nil {
		userDeps.Tracker = shipper
		adminDeps.Shipper = shipper
	}

	a.router = routes.New(routes.Deps{
		Catalog:        product.NewHandler(catalogSvc),
		User:           user.NewHandler(userDeps),
		Payment:        paymenthandler.NewHandler(bridge, webhook),
		Admin:          admin.NewHandler(adminDeps),
		CustomerTokens: authSvc.CustomerTokens(),
		AdminTokens:    authSvc.AdminTokens(),
		Cache:          store,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		APIRateLimit:   cfg.Server.APIRateLimit,
		Health:         health,
	})

	// Tâches planifiées
	jobs := scheduler.Jobs{
		Unpaid:      orderSvc,
		UnpaidTTL:   cfg.Shop.UnpaidOrderTTL,
		UnpaidEvery: cfg.Shop.UnpaidOrderTTL / 4,
	}
	if shipper != nil {
		jobs.Tracking = shipper
		jobs.TrackingEvery = cfg.Shipping.TrackingEvery
	}
	if a.scheduler, err = scheduler.New(jobs); err != nil {
		return nil, fmt.Errorf("planificateur: %w", err)
	}
	return a, nil
}
