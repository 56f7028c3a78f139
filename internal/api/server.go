package api

import (
	"database/sql"

	"github.com/go-playground/validator/v10"

	"github.com/mariana/studydeck/internal/repository"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/worker"
)

type Server struct {
	DB             *sql.DB
	DeckService    services.DeckService
	StudyService   services.StudyService
	ImportService  services.ImportService
	StatsService   services.StatsService
	StatsRepo      repository.StatsRepository
	JobQueue       worker.JobQueue
	Validate       *validator.Validate
	MaxImportBytes int64
}

// NewServer wires the handler set. Dependencies are exported fields so tests
// can construct a partial server with mocks.
func NewServer(
	db *sql.DB,
	decks services.DeckService,
	study services.StudyService,
	imports services.ImportService,
	stats services.StatsService,
	statsRepo repository.StatsRepository,
	jobQueue worker.JobQueue,
	maxImportBytes int64,
) *Server {
	if maxImportBytes <= 0 {
		maxImportBytes = 5 << 20
	}
	return &Server{
		DB:             db,
		DeckService:    decks,
		StudyService:   study,
		ImportService:  imports,
		StatsService:   stats,
		StatsRepo:      statsRepo,
		JobQueue:       jobQueue,
		Validate:       validator.New(),
		MaxImportBytes: maxImportBytes,
	}
}
