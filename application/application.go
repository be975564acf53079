package application

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"classBook/config"
	"classBook/database"
	"classBook/logger"
	"classBook/maxAPI"
	"classBook/storage"
)

type Application struct {
	Bot     *maxAPI.Bot
	Gateway *database.Gateway
	logger  *logger.Logger
}

func NewApplication() *Application {
	return &Application{}
}

func (app *Application) Configure(ctx context.Context, cfg *config.Config, logger *logger.Logger) error {
	app.logger = logger

	gw, err := OpenGateway(ctx, cfg, logger)
	if err != nil {
		return err
	}
	app.Gateway = gw

	b, err := maxAPI.NewBot(ctx, &cfg.MaxAPI, logger, gw)
	if err != nil {
		_ = gw.Close()
		return err
	}
	app.Bot = b

	return nil
}

// Run serves the bot until ctx is done.
func (app *Application) Run(ctx context.Context) {
	app.Bot.Start(ctx)
	<-ctx.Done()
}

func (app *Application) Close() error {
	if app.Gateway == nil {
		return nil
	}
	return app.Gateway.Close()
}

// OpenGateway connects the configured document store, list cache and blob
// store. The admin CLI shares it with the bot.
func OpenGateway(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.Gateway, error) {
	var fb *firebase.App
	if cfg.Store.Driver == config.StoreFirestore || cfg.Blob.Driver == config.BlobGCS {
		var err error
		fb, err = openFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
	}

	blobs, err := openBlobs(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}

	cached, err := withCache(store, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	log.Infof("Record store %s ready, blobs in %s", cfg.Store.Driver, cfg.Blob.Driver)
	return database.NewGateway(cached, blobs), nil
}

func openFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	fbCfg := &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.BucketName(),
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "init firebase")
	}
	return app, nil
}

func openStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (database.DocumentStore, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.Store.Timeout)
	defer cancel()

	switch cfg.Store.Driver {
	case config.StoreFirestore:
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "open firestore")
		}
		return database.NewFirestoreStore(client), nil
	case config.StoreMongo:
		return database.OpenMongo(dialCtx, &cfg.Mongo)
	case config.StorePostgres:
		return database.OpenPostgres(dialCtx, &cfg.Database)
	case config.StoreMemory:
		return database.NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openBlobs(ctx context.Context, cfg *config.Config, fb *firebase.App) (database.BlobStore, error) {
	switch cfg.Blob.Driver {
	case config.BlobGCS:
		client, err := fb.Storage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "open storage")
		}
		name := cfg.Firebase.BucketName()
		bucket, err := client.Bucket(name)
		if err != nil {
			return nil, errors.Wrapf(err, "open bucket %s", name)
		}
		return storage.NewGCSStore(bucket, name, cfg.Blob.MaxBytes), nil
	case config.BlobLocal:
		return storage.NewLocalStore(cfg.Blob.Dir, cfg.Blob.BaseURL, cfg.Blob.MaxBytes)
	default:
		return nil, errors.Errorf("unknown blob driver %q", cfg.Blob.Driver)
	}
}

// withCache puts the list cache in front of store: Redis when an address is
// configured, otherwise in process. A zero TTL disables it.
func withCache(store database.DocumentStore, cfg *config.Config, log *logger.Logger) (database.DocumentStore, error) {
	if cfg.CacheTTL == 0 {
		return store, nil
	}

	if cfg.Redis.Addr == "" {
		return database.NewCachedStore(store, database.NewLocalCache(), cfg.CacheTTL), nil
	}

	cache, err := database.NewRedisCache(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Infof("List cache on redis %s, ttl %s", cfg.Redis.Addr, cfg.CacheTTL)
	return database.NewCachedStore(store, cache, cfg.CacheTTL), nil
}
