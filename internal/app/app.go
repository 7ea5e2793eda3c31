// Package app builds the backends selected by configuration. It is shared by
// the API server and the cron runner so both see the same store.
package app

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"alugaai-backend/internal/config"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
	"alugaai-backend/internal/repository/firestore"
	"alugaai-backend/internal/repository/memory"
	"alugaai-backend/internal/repository/postgres"
	"alugaai-backend/internal/security"
	"alugaai-backend/internal/service"
	"alugaai-backend/internal/storage"
)

// NewFirebaseApp initializes the Firebase Admin SDK, or returns nil when no
// component is configured to use Firebase.
func NewFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if !cfg.UsesFirebase() {
		return nil, nil
	}
	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}
	fb, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.Firebase.ProjectID,
		StorageBucket: cfg.Firebase.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	logger.Info("Firebase app initialized", "project_id", cfg.Firebase.ProjectID)
	return fb, nil
}

// OpenStore connects the configured persistent store. The returned check
// reports backend health for readiness checks.
func OpenStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (*repository.Store, func(context.Context) error, error) {
	switch cfg.Store.Type {
	case "memory":
		logger.Info("Using in-memory store", "seed", cfg.Store.Seed)
		return memory.NewStore(cfg.Store.Seed), nil, nil

	case "postgres":
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		db, err := postgres.Open(connectCtx, cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		logger.Info("Database connection established")
		return postgres.NewStore(db), db.PingContext, nil

	case "firestore":
		if fb == nil {
			return nil, nil, fmt.Errorf("firestore store requires a firebase app")
		}
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("open firestore: %w", err)
		}
		logger.Info("Using Firestore store", "project_id", cfg.Firebase.ProjectID)
		return firestore.NewStore(client), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
}

// NewVerifier returns the bearer token verifier for the configured auth provider.
func NewVerifier(ctx context.Context, cfg *config.Config, tokens security.TokenManager, fb *firebase.App) (security.Verifier, error) {
	local := security.NewLocalVerifier(tokens)
	if cfg.Auth.Provider == "local" {
		return local, nil
	}
	if fb == nil {
		return nil, fmt.Errorf("%s auth requires a firebase app", cfg.Auth.Provider)
	}
	client, err := fb.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firebase auth: %w", err)
	}
	remote := security.NewFirebaseVerifier(client)
	if cfg.Auth.Provider == "firebase" {
		return remote, nil
	}
	return security.ChainVerifier{local, remote}, nil
}

// NewBlobStore returns the configured image store. The local store is also
// returned on its own so the HTTP layer can serve its files; it is nil for
// Firebase Storage.
func NewBlobStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (storage.BlobStore, *storage.LocalStorage, error) {
	switch cfg.Storage.Type {
	case "local":
		local, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize local storage: %w", err)
		}
		logger.Info("Using local image storage", "upload_dir", cfg.Storage.UploadDir)
		return local, local, nil

	case "firebase":
		if fb == nil {
			return nil, nil, fmt.Errorf("firebase storage requires a firebase app")
		}
		client, err := fb.Storage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("open firebase storage: %w", err)
		}
		bucket, err := client.Bucket(cfg.Firebase.StorageBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("open bucket %s: %w", cfg.Firebase.StorageBucket, err)
		}
		logger.Info("Using Firebase image storage", "bucket", cfg.Firebase.StorageBucket)
		return storage.NewFirebaseStorage(bucket, cfg.Firebase.StorageBucket), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage type: %q", cfg.Storage.Type)
}

// NewMailer sends through SendGrid when an API key is configured and only
// logs messages otherwise.
func NewMailer(cfg *config.Config) service.Mailer {
	if cfg.Email.SendGridAPIKey == "" {
		logger.Warn("No SendGrid API key configured, e-mails will only be logged")
		return service.NewLogMailer()
	}
	return service.NewSendGridMailer(cfg.Email.SendGridAPIKey, cfg.Email.From, cfg.Email.FromName)
}

// NewTokenManager builds the JWT manager from the configured expiries.
func NewTokenManager(cfg *config.Config) security.TokenManager {
	return security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)
}
