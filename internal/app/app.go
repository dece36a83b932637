package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/config"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/db"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/repository"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/service"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	FileService      *service.FileService
	RetrievalService *service.RetrievalService
	ListingService   *service.ListingService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	fileRepository := repository.NewFileRepository(database)

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	recordCache := service.NewRecordCache(cfg.CacheSize, cfg.CacheTTL)
	fileService := service.NewFileService(fileRepository, blobStorage, recordCache, cfg.AppURL)
	retrievalService := service.NewRetrievalService(fileRepository, blobStorage, recordCache)
	listingService := service.NewListingService(fileRepository, cfg.DefaultPageSize, cfg.MaxPageSize)

	return &App{
		Cfg:              cfg,
		DB:               database,
		FileService:      fileService,
		RetrievalService: retrievalService,
		ListingService:   listingService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
