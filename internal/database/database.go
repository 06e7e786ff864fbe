package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wearxture_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// =============================================
// SCYLLA DB (un keyspace par domaine)
// =============================================

type ScyllaManager struct {
	sessions map[string]*gocql.Session // keyspace → session
	cfg      config.ScyllaConfig
	mu       sync.Mutex
}

// NewScyllaManager ouvre une session pour chaque keyspace configuré.
func NewScyllaManager(cfg config.ScyllaConfig) (*ScyllaManager, error) {
	sm := &ScyllaManager{
		sessions: make(map[string]*gocql.Session),
		cfg:      cfg,
	}
	for _, ks := range []string{cfg.ProductsKeyspace, cfg.UsersKeyspace, cfg.OrdersKeyspace} {
		if ks == "" {
			continue
		}
		if _, err := sm.GetSession(ks); err != nil {
			sm.Close()
			return nil, fmt.Errorf("échec initialisation keyspace %s: %w", ks, err)
		}
	}
	// Les tables sont créées via scripts/scylladb_init.cql
	return sm, nil
}

func (sm *ScyllaManager) newCluster(keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(sm.cfg.Hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.SerialConsistency = gocql.LocalSerial
	cluster.Timeout = sm.cfg.Timeout
	cluster.NumConns = sm.cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if sm.cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: sm.cfg.Username,
			Password: sm.cfg.Password,
		}
	}
	if sm.cfg.SSLEnabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 sm.cfg.CACertPath,
			EnableHostVerification: sm.cfg.CACertPath != "",
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// GetSession retourne la session d'un keyspace, en la recréant si elle est fermée.
func (sm *ScyllaManager) GetSession(keyspace string) (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if session, ok := sm.sessions[keyspace]; ok && !session.Closed() {
		return session, nil
	}

	session, err := sm.newCluster(keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %w", keyspace, err)
	}
	sm.sessions[keyspace] = session
	log.Info().Str("keyspace", keyspace).Msg("✅ Nouvelle session ScyllaDB")
	return session, nil
}

func (sm *ScyllaManager) Products() (*gocql.Session, error) {
	return sm.GetSession(sm.cfg.ProductsKeyspace)
}

func (sm *ScyllaManager) Users() (*gocql.Session, error) {
	return sm.GetSession(sm.cfg.UsersKeyspace)
}

func (sm *ScyllaManager) Orders() (*gocql.Session, error) {
	return sm.GetSession(sm.cfg.OrdersKeyspace)
}

// Close ferme toutes les sessions ScyllaDB.
func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for keyspace, session := range sm.sessions {
		session.Close()
		log.Info().Str("keyspace", keyspace).Msg("🔌 Session ScyllaDB fermée")
	}
	sm.sessions = make(map[string]*gocql.Session)
}

// =============================================
// REDIS
// =============================================

func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}
	log.Info().Str("addr", cfg.Addr).Msg("✅ Redis connecté")
	return client, nil
}

// =============================================
// ELASTICSEARCH
// =============================================

// ConnectElastic retourne nil sans erreur si aucune adresse n'est configurée.
func ConnectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	if len(cfg.Addresses) == 0 {
		log.Warn().Msg("⚠️ Elasticsearch non configuré, recherche en mémoire")
		return nil, nil
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}
	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %s", res.Status())
	}
	log.Info().Msg("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================

// ConnectMinIO retourne nil sans erreur si aucun endpoint n'est configuré.
func ConnectMinIO(ctx context.Context, cfg config.MinIOConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		log.Warn().Msg("⚠️ MinIO non configuré, uploads désactivés")
		return nil, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("erreur création bucket MinIO: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("🪣 Bucket créé")
	}

	log.Info().Str("endpoint", cfg.Endpoint).Msg("✅ Connecté à MinIO")
	return client, nil
}
