package di

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/familyjustice/orders-api/internal/notifications"
	"github.com/familyjustice/orders-api/internal/platform/config"
	"github.com/familyjustice/orders-api/internal/platform/observability"
	"github.com/familyjustice/orders-api/internal/platform/secrets"
	"github.com/familyjustice/orders-api/internal/platform/storage"
	"github.com/familyjustice/orders-api/internal/rendering"
	"github.com/familyjustice/orders-api/internal/repositories"
	firestorerepo "github.com/familyjustice/orders-api/internal/repositories/firestore"
	"github.com/familyjustice/orders-api/internal/services"
	"github.com/familyjustice/orders-api/internal/stamping"
)

// Container wires clients, repositories and services for runtime use.
type Container struct {
	Config    config.Config
	Cases     repositories.CaseRepository
	Lifecycle services.OrderLifecycleService

	firestoreClient *firestore.Client
	storageClient   *gcs.Client
	pubsubClient    *pubsub.Client
	eventTopic      *pubsub.Topic
	secretFetcher   *secrets.Fetcher
}

// NewContainer constructs the runtime dependencies from configuration.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Container{Config: cfg}

	fsClient, err := newFirestoreClient(ctx, cfg.Firestore)
	if err != nil {
		return nil, fmt.Errorf("build firestore client: %w", err)
	}
	c.firestoreClient = fsClient

	cases, err := firestorerepo.NewCaseRepository(fsClient)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build case repository: %w", err)
	}
	c.Cases = cases

	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build storage client: %w", err)
	}
	c.storageClient = gcsClient

	uploader, err := storage.NewUploader(gcsClient, cfg.Storage.DocumentsBucket)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build document uploader: %w", err)
	}

	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithLogger(logger),
		secrets.WithProject(cfg.Firestore.ProjectID),
	)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build secret fetcher: %w", err)
	}
	c.secretFetcher = fetcher

	renderToken, err := fetcher.Resolve(ctx, cfg.Rendering.AuthToken)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("resolve rendering credentials: %w", err)
	}
	renderer, err := rendering.NewClient(cfg.Rendering.Endpoint, renderToken)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build rendering client: %w", err)
	}

	stampToken, err := fetcher.Resolve(ctx, cfg.Stamping.AuthToken)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("resolve stamping credentials: %w", err)
	}
	stamper, err := stamping.NewClient(cfg.Stamping.Endpoint, stampToken)
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build stamping client: %w", err)
	}

	var publisher services.OrderEventPublisher
	if cfg.Notifications.Topic != "" {
		psClient, err := pubsub.NewClient(ctx, cfg.Notifications.ProjectID)
		if err != nil {
			c.close(ctx)
			return nil, fmt.Errorf("build pubsub client: %w", err)
		}
		c.pubsubClient = psClient
		c.eventTopic = psClient.Topic(cfg.Notifications.Topic)

		publisher, err = notifications.NewPubSubOrderEventPublisher(c.eventTopic)
		if err != nil {
			c.close(ctx)
			return nil, fmt.Errorf("build order event publisher: %w", err)
		}
	} else {
		logger.Warn("order event topic not configured; lifecycle events will not be published")
	}

	lifecycle, err := services.NewOrderLifecycleService(services.OrderLifecycleDeps{
		Renderer: renderer,
		Stamper:  stamper,
		Files:    uploader,
		Events:   publisher,
		Logger:   observability.ServiceLogHook(logger),
	})
	if err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("build order lifecycle service: %w", err)
	}
	c.Lifecycle = lifecycle

	return c, nil
}

// Close releases client resources.
func (c *Container) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.close(ctx)
}

func (c *Container) close(context.Context) error {
	var errs []error
	if c.eventTopic != nil {
		c.eventTopic.Stop()
	}
	if c.pubsubClient != nil {
		errs = append(errs, c.pubsubClient.Close())
	}
	if c.secretFetcher != nil {
		errs = append(errs, c.secretFetcher.Close())
	}
	if c.storageClient != nil {
		errs = append(errs, c.storageClient.Close())
	}
	if c.firestoreClient != nil {
		errs = append(errs, c.firestoreClient.Close())
	}
	return errors.Join(errs...)
}

func newFirestoreClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	projectID := cfg.ProjectID
	var opts []option.ClientOption
	if cfg.EmulatorHost != "" {
		if projectID == "" {
			projectID = "local"
		}
		opts = append(opts,
			option.WithEndpoint(cfg.EmulatorHost),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}
	return firestore.NewClient(ctx, projectID, opts...)
}
