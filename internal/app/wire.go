package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/quotediary-backend/internal/adapter/postgres"
	auditrepo "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres/audit"
	catalogrepo "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres/catalog"
	quoterepo "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres/quote"
	reportrepo "github.com/heartmarshall/quotediary-backend/internal/adapter/postgres/report"
	"github.com/heartmarshall/quotediary-backend/internal/auth"
	"github.com/heartmarshall/quotediary-backend/internal/config"
	"github.com/heartmarshall/quotediary-backend/internal/domain"
	"github.com/heartmarshall/quotediary-backend/internal/service/quote"
	"github.com/heartmarshall/quotediary-backend/internal/service/recommend"
	"github.com/heartmarshall/quotediary-backend/internal/service/report"
	"github.com/heartmarshall/quotediary-backend/internal/taxonomy"
	"github.com/heartmarshall/quotediary-backend/internal/transport/dataloader"
	"github.com/heartmarshall/quotediary-backend/internal/transport/middleware"
	"github.com/heartmarshall/quotediary-backend/internal/transport/rest"
)

// Repos are the PostgreSQL repositories shared by the server and reportctl.
type Repos struct {
	Quotes  *quoterepo.Repo
	Catalog *catalogrepo.Repo
	Reports *reportrepo.Repo
	Audit   *auditrepo.Repo
}

// Services are the domain services built on top of Repos.
type Services struct {
	Repos      Repos
	Normalizer *taxonomy.Normalizer
	Recommend  *recommend.Service
	Quotes     *quote.Service
	Reports    *report.Service
}

// NewServices wires repositories, the taxonomy and the domain services.
func NewServices(logger *slog.Logger, pool *pgxpool.Pool, cfg config.ReportConfig) (*Services, error) {
	tax, err := taxonomy.LoadFile(cfg.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	normalizer := taxonomy.NewNormalizer(tax)

	repos := Repos{
		Quotes:  quoterepo.New(pool),
		Catalog: catalogrepo.New(pool),
		Reports: reportrepo.New(pool),
		Audit:   auditrepo.New(pool),
	}
	txm := postgres.NewTxManager(pool)

	rec, err := recommend.NewService(logger, repos.Catalog, tax, recommend.Config{
		DefaultLimit:      cfg.RecommendationLimit,
		UniversalCategory: cfg.UniversalCategory,
		Templates: recommend.Templates{
			Match:    cfg.MatchTemplate,
			Fallback: cfg.FallbackTemplate,
		},
	})
	if err != nil {
		return nil, err
	}

	quotes := quote.NewService(logger, repos.Quotes, normalizer, txm, repos.Audit, cfg.Location)
	reports := report.NewService(logger, repos.Reports, repos.Quotes, rec, normalizer, txm, repos.Audit, report.Config{
		WeeklyTarget:        cfg.WeeklyTarget,
		MonthlyTarget:       cfg.MonthlyTarget,
		RecommendationLimit: cfg.RecommendationLimit,
		Location:            cfg.Location,
	})

	return &Services{
		Repos:      repos,
		Normalizer: normalizer,
		Recommend:  rec,
		Quotes:     quotes,
		Reports:    reports,
	}, nil
}

// NewHTTPHandler builds the REST router over svc. The caller owns limiter
// and stops it on shutdown.
func NewHTTPHandler(logger *slog.Logger, cfg *config.Config, pool *pgxpool.Pool, svc *Services, limiter *middleware.RateLimiter) http.Handler {
	loaderRepos := &dataloader.Repos{Catalog: svc.Repos.Catalog}
	entries := func(ctx context.Context, ids []uuid.UUID) ([]*domain.CatalogEntry, error) {
		return dataloader.LoadCatalogEntries(ctx, loaderRepos, ids)
	}

	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	return rest.NewRouter(rest.RouterDeps{
		Health:      rest.NewHealthHandler(pool, Version, svc.Normalizer.Taxonomy().Version()),
		Quotes:      rest.NewQuoteHandler(svc.Quotes, svc.Reports, logger),
		Reports:     rest.NewReportHandler(svc.Reports, entries, logger),
		Catalog:     rest.NewCatalogHandler(svc.Recommend, svc.Normalizer, logger),
		Auth:        middleware.Auth(jwt),
		Loaders:     dataloader.Middleware(loaderRepos),
		RateLimiter: limiter,
		CORS:        cfg.CORS,
		RateLimit:   cfg.RateLimit,
		Logger:      logger,
	})
}
