package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/posalpro/posalpro/internal/config"
	"github.com/posalpro/posalpro/pkg/logger"

	customerApp "github.com/posalpro/posalpro/internal/customer/application"
	customerDomain "github.com/posalpro/posalpro/internal/customer/domain"
	customerHTTP "github.com/posalpro/posalpro/internal/customer/infra/inbound/http"
	customerMongo "github.com/posalpro/posalpro/internal/customer/infra/outbound/db/mongodb"
	customerPostgres "github.com/posalpro/posalpro/internal/customer/infra/outbound/db/postgre"
	customerSQLite "github.com/posalpro/posalpro/internal/customer/infra/outbound/db/sqlite"

	productApp "github.com/posalpro/posalpro/internal/product/application"
	productDomain "github.com/posalpro/posalpro/internal/product/domain"
	productHTTP "github.com/posalpro/posalpro/internal/product/infra/inbound/http"
	productSQLite "github.com/posalpro/posalpro/internal/product/infra/outbound/db/sqlite"

	proposalApp "github.com/posalpro/posalpro/internal/proposal/application"
	proposalDomain "github.com/posalpro/posalpro/internal/proposal/domain"
	proposalHTTP "github.com/posalpro/posalpro/internal/proposal/infra/inbound/http"
	proposalPostgres "github.com/posalpro/posalpro/internal/proposal/infra/outbound/db/postgre"
	proposalSQLite "github.com/posalpro/posalpro/internal/proposal/infra/outbound/db/sqlite"

	chMetrics "github.com/posalpro/posalpro/internal/shared/infra/analytics/clickhouse"
	sharedCacheInfra "github.com/posalpro/posalpro/internal/shared/infra/cache"
	mongoOutbox "github.com/posalpro/posalpro/internal/shared/infra/db/mongodb"
	postgresOutbox "github.com/posalpro/posalpro/internal/shared/infra/db/postgres"
	sqliteOutbox "github.com/posalpro/posalpro/internal/shared/infra/db/sqlite"
	eventsInfra "github.com/posalpro/posalpro/internal/shared/infra/events"
	sharedHTTP "github.com/posalpro/posalpro/internal/shared/infra/inbound/http"
	"github.com/posalpro/posalpro/internal/shared/infra/relayer"

	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedEvents "github.com/posalpro/posalpro/shared/events"
	"github.com/posalpro/posalpro/shared/platform/analytics"
	sharedBus "github.com/posalpro/posalpro/shared/platform/bus"
	sharedCache "github.com/posalpro/posalpro/shared/platform/cache"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
)

const eventsTopic = "posalpro.events"

func main() {
	// ---------- Logger y configuración ----------
	logger.Init()
	log := logger.Logger()
	defer log.Sync()

	cfg := config.LoadConfig()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	limits := sharedQuery.Limits{
		Default:         cfg.PageDefaultLimit,
		Max:             cfg.PageMaxLimit,
		CursorThreshold: cfg.CursorThreshold,
	}

	// Valida la coherencia de los descriptores en el arranque: un allow-list
	// roto debe tumbar el proceso, no esperar a la primera petición.
	registry := sharedQuery.MustRegistry(
		proposalDomain.Descriptor(),
		customerDomain.Descriptor(),
		productDomain.Descriptor(),
	)
	for _, entity := range []string{proposalDomain.EntityType, customerDomain.EntityType, productDomain.EntityType} {
		if _, err := registry.Lookup(entity); err != nil {
			log.Fatal("Descriptor no registrado", zap.String("entity", entity), zap.Error(err))
		}
	}
	log.Info("📇 Descriptores de entidad registrados", zap.Int("count", 3))

	// ---------- Cache (Redis con fallback a memoria) ----------
	var cache sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, usando cache en memoria", zap.Error(err))
		memCache := sharedCacheInfra.NewInMemoryCache(cfg.CacheTTL, time.Minute)
		defer memCache.Stop()
		cache = memCache
	} else {
		log.Info("✅ Conectado a Redis", zap.String("addr", cfg.RedisAddr))
		cache = sharedCacheInfra.NewRedisCache(rdb, cfg.CacheTTL)
	}
	pingCancel()

	// ---------- Analítica de consultas (ClickHouse, opcional) ----------
	var metricsSink analytics.QueryMetricsSink
	if cfg.ClickHouseAddr != "" {
		chRepo, err := chMetrics.NewQueryMetricsRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, métricas de consulta desactivadas", zap.Error(err))
		} else {
			if err := chRepo.InitSchema(ctx); err != nil {
				log.Fatal("Error inicializando esquema de ClickHouse", zap.Error(err))
			}
			metricsSink = chRepo
			log.Info("✅ Conectado a ClickHouse", zap.String("addr", cfg.ClickHouseAddr))
		}
	}

	// ---------- Publicador de eventos ----------
	var publisher sharedBus.EventPublisher
	if cfg.UseKafka {
		writer := &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers...),
			Topic:    eventsTopic,
			Balancer: &kafka.Hash{},
		}
		defer writer.Close()
		publisher = eventsInfra.NewKafkaPublisher(writer, log)
		log.Info("✅ Publicando eventos en Kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	} else {
		publisher = eventsInfra.NewInMemoryEventBus(eventsTopic)
		log.Info("Publicando eventos en bus en memoria")
	}

	// Registro combinado de eventos para los relayers de outbox.
	eventRegistry := map[string]sharedEvents.EventMetadata{}
	for _, reg := range []map[string]sharedEvents.EventMetadata{
		proposalDomain.NewEventRegistry(),
		customerDomain.NewEventRegistry(),
		productDomain.NewEventRegistry(),
	} {
		for name, meta := range reg {
			eventRegistry[name] = meta
		}
	}

	// ---------- Almacenes ----------
	// El catálogo de productos vive siempre en SQLite embebido; propuestas y
	// clientes van a SQLite en despliegue local y a Postgres en el resto.
	// Si hay Mongo configurado, los clientes se mueven allí.
	sqliteDB, err := sql.Open("sqlite", cfg.SQLitePath)
	if err != nil {
		log.Fatal("Error abriendo SQLite", zap.Error(err))
	}
	defer sqliteDB.Close()
	if err := productSQLite.InitSQLite(sqliteDB); err != nil {
		log.Fatal("Error inicializando tablas de productos", zap.Error(err))
	}

	var proposalRepo proposalDomain.ProposalRepository
	var customerRepo customerDomain.CustomerRepository

	var pgDB *sql.DB
	if cfg.LocalDeployment {
		if err := proposalSQLite.InitSQLite(sqliteDB); err != nil {
			log.Fatal("Error inicializando tablas de propuestas", zap.Error(err))
		}
		proposalRepo = proposalSQLite.NewProposalRepoSQLite(sqliteDB)
		log.Info("💾 Propuestas en SQLite", zap.String("path", cfg.SQLitePath))
	} else {
		pgDB, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Error abriendo Postgres", zap.Error(err))
		}
		defer pgDB.Close()
		if err := proposalPostgres.InitPostgres(pgDB); err != nil {
			log.Fatal("Error inicializando tablas de propuestas", zap.Error(err))
		}
		proposalRepo = proposalPostgres.NewProposalRepoPostgres(pgDB)
		log.Info("💾 Propuestas en Postgres")
	}

	var mongoClient *mongo.Client
	switch {
	case cfg.MongoURI != "":
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("Error conectando a MongoDB", zap.Error(err))
		}
		defer mongoClient.Disconnect(context.Background())
		customerRepo, err = customerMongo.NewCustomerRepoMongoDB(ctx, mongoClient, cfg.MongoDatabase)
		if err != nil {
			log.Fatal("Error inicializando repositorio de clientes", zap.Error(err))
		}
		log.Info("💾 Clientes en MongoDB", zap.String("db", cfg.MongoDatabase))
	case cfg.LocalDeployment:
		if err := customerSQLite.InitSQLite(sqliteDB); err != nil {
			log.Fatal("Error inicializando tablas de clientes", zap.Error(err))
		}
		customerRepo = customerSQLite.NewCustomerRepoSQLite(sqliteDB)
		log.Info("💾 Clientes en SQLite", zap.String("path", cfg.SQLitePath))
	default:
		if err := customerPostgres.InitPostgres(pgDB); err != nil {
			log.Fatal("Error inicializando tablas de clientes", zap.Error(err))
		}
		customerRepo = customerPostgres.NewCustomerRepoPostgres(pgDB)
		log.Info("💾 Clientes en Postgres")
	}

	productRepo := productSQLite.NewProductRepoSQLite(sqliteDB)

	// ---------- Relayers de outbox (uno por almacén con outbox) ----------
	startWorker := func(repo sharedDomain.OutboxRepository, store string) {
		worker := relayer.NewOutboxWorker(repo, publisher, eventRegistry, cfg.OutboxPeriod, cfg.OutboxLimit, log)
		go worker.Start(ctx)
		log.Info("🔁 Relayer de outbox arrancado", zap.String("store", store))
	}
	startWorker(sqliteOutbox.NewOutboxRepoSQLite(sqliteDB), "sqlite")
	if pgDB != nil {
		startWorker(postgresOutbox.NewOutboxRepoPostgres(pgDB), "postgres")
	}
	if mongoClient != nil {
		startWorker(mongoOutbox.NewOutboxRepoMongoDB(mongoClient, cfg.MongoDatabase), "mongodb")
	}

	// ---------- Servicios de aplicación ----------
	proposalService := proposalApp.NewProposalService(proposalRepo, cache, metricsSink, limits, log)
	customerService := customerApp.NewCustomerService(customerRepo, cache, metricsSink, limits, log)
	productService := productApp.NewProductService(productRepo, cache, metricsSink, limits, log)

	// ---------- HTTP ----------
	router := gin.Default()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	proposalHTTP.RegisterProposalRoutes(router, proposalHTTP.NewProposalHandler(proposalService))
	customerHTTP.RegisterCustomerRoutes(router, customerHTTP.NewCustomerHandler(customerService))
	productHTTP.RegisterProductRoutes(router, productHTTP.NewProductHandler(productService))
	sharedHTTP.RegisterMetricsRoutes(router, sharedHTTP.NewMetricsHandler(metricsSink))

	log.Info("🚀 Servidor HTTP escuchando", zap.String("port", cfg.HTTPPort))
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("Error en el servidor HTTP", zap.Error(err))
	}
}
