package app

import (
	"context"
	"time"

	"jobscout/internal/cleanup"
	"jobscout/internal/config"
	"jobscout/internal/cv"
	"jobscout/internal/database"
	dbpostgres "jobscout/internal/database/postgres"
	"jobscout/internal/infrastructure/cache"
	"jobscout/internal/llm"
	"jobscout/internal/matcher"
	"jobscout/internal/notifier"
	"jobscout/internal/payments"
	"jobscout/internal/pkg/jwt"
	"jobscout/internal/repository"
	"jobscout/internal/usecase"
	"jobscout/internal/ws"

	"github.com/sirupsen/logrus"
)

// Container wires every layer once; both the API server and the worker
// build from it.
type Container struct {
	Config config.Config
	Log    *logrus.Logger
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	Tokens jwt.Service

	Users         *repository.PostgresUserRepository
	Preferences   repository.PreferenceRepository
	Jobs          repository.JobRepository
	Matches       repository.MatchRepository
	Applications  repository.ApplicationRepository
	CVs           repository.CVRepository
	Subscriptions repository.SubscriptionRepository
	Notifications repository.NotificationRepository

	Completer llm.Completer
	Matcher   *matcher.Matcher
	Extractor *matcher.TitleExtractor
	Analyzer  *cv.Analyzer
	Generator *cv.Generator
	Gateway   *payments.Client
	Notifier  *notifier.Notifier
	Cleaner   *cleanup.Cleaner

	AuthUC         *usecase.AuthUsecase
	PreferenceUC   *usecase.PreferenceUsecase
	JobUC          *usecase.JobUsecase
	MatchUC        *usecase.MatchUsecase
	ApplicationUC  *usecase.ApplicationUsecase
	CVUC           *usecase.CVUsecase
	SubscriptionUC *usecase.SubscriptionUsecase
	NotificationUC *usecase.NotificationUsecase
}

func NewContainer(cfg config.Config, log *logrus.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Log:    log,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, log),
		Hub:    ws.NewHub(log),
		Tokens: jwt.NewHMACService(cfg.JWT),
	}

	c.Users = repository.NewPostgresUserRepository(db)
	c.Preferences = repository.NewPostgresPreferenceRepository(db)
	c.Jobs = repository.NewPostgresJobRepository(db)
	c.Matches = repository.NewPostgresMatchRepository(db)
	c.Applications = repository.NewPostgresApplicationRepository(db)
	c.CVs = repository.NewPostgresCVRepository(db)
	c.Subscriptions = repository.NewPostgresSubscriptionRepository(db)
	c.Notifications = repository.NewPostgresNotificationRepository(db)

	c.Completer = llm.NewOpenAIClient(cfg.LLM)
	c.Notifier = notifier.New(c.Applications, c.Subscriptions, c.Jobs, c.Notifications, c.Hub, log)
	c.Matcher = matcher.New(c.Users, c.Preferences, c.Jobs, c.Matches, c.Completer, c.Notifier, log)
	c.Extractor = matcher.NewTitleExtractor(c.Completer)
	c.Analyzer = cv.NewAnalyzer(c.Completer, c.CVs)
	c.Generator = cv.NewGenerator(c.Completer, c.CVs)
	c.Gateway = payments.NewClient(cfg.Payments)
	c.Cleaner = cleanup.New(c.Jobs, c.Notifications, log)

	c.AuthUC = usecase.NewAuthUsecase(c.Users, c.Tokens)
	c.PreferenceUC = usecase.NewPreferenceUsecase(c.Preferences, c.Extractor, log)
	c.JobUC = usecase.NewJobUsecase(c.Jobs, c.Cache)
	c.MatchUC = usecase.NewMatchUsecase(c.Matches, c.Subscriptions)
	c.ApplicationUC = usecase.NewApplicationUsecase(c.Applications, c.Jobs)
	c.CVUC = usecase.NewCVUsecase(c.Analyzer, c.Generator, c.Applications, c.Jobs, c.CVs, c.Subscriptions)
	c.SubscriptionUC = usecase.NewSubscriptionUsecase(c.Subscriptions, c.Users, c.Gateway, c.Notifier, log)
	c.NotificationUC = usecase.NewNotificationUsecase(c.Notifications)

	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
