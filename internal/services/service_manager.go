package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/codebench-edu/console-service/internal/cache"
	"github.com/codebench-edu/console-service/internal/events"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	EnableMetrics      bool
	LogLevel           slog.Level

	// Service-specific configurations
	Question  ServiceConfig
	MCQ       ServiceConfig
	Authoring ServiceConfig
	Analytics ServiceConfig
	Notes     ServiceConfig
	Import    ServiceConfig

	// Global settings
	DefaultTimeout    time.Duration
	MaxRetries        int
	RateLimitingRules map[string]RateLimit
}

type ServiceConfig struct {
	Enabled         bool
	CacheEnabled    bool
	CacheTTL        time.Duration
	ValidationLevel ValidationLevel
	AuditingEnabled bool
	MetricsEnabled  bool
}

type ValidationLevel int

const (
	ValidationBasic ValidationLevel = iota
	ValidationStrict
	ValidationFull
)

type RateLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db             *gorm.DB
	repo           repositories.Repository
	cacheManager   *cache.CacheManager
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	config         ServiceManagerConfig

	// Service instances
	questionService  QuestionService
	categoryService  CategoryService
	testCaseService  TestCaseService
	mcqService       MCQService
	authoringService AuthoringService
	templateService  TemplateService
	analyticsService AnalyticsService
	notesService     NotesService
	importService    ImportService
	courseService    CourseService
	userService      UserService
	eventService     NotificationEventService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, cacheManager *cache.CacheManager, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:             db,
		repo:           repo,
		cacheManager:   cacheManager,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
		config:         config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, cacheManager *cache.CacheManager, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		EnableMetrics:      true,
		LogLevel:           slog.LevelInfo,

		Question: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        10 * time.Minute,
			ValidationLevel: ValidationFull,
			AuditingEnabled: true,
			MetricsEnabled:  true,
		},
		MCQ: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        10 * time.Minute,
			ValidationLevel: ValidationFull,
			AuditingEnabled: true,
			MetricsEnabled:  true,
		},
		Authoring: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.SessionCacheConfig.TTL,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
			MetricsEnabled:  true,
		},
		Analytics: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        5 * time.Minute,
			ValidationLevel: ValidationBasic,
			AuditingEnabled: false,
			MetricsEnabled:  true,
		},
		Notes: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
			MetricsEnabled:  true,
		},
		Import: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationStrict,
			AuditingEnabled: true,
			MetricsEnabled:  true,
		},

		DefaultTimeout:    30 * time.Second,
		MaxRetries:        3,
		RateLimitingRules: make(map[string]RateLimit),
	}

	return NewServiceManager(db, repo, cacheManager, eventPublisher, logger, validator, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	// Event service first; content services publish through it.
	sm.eventService = NewNotificationEventService(sm.repo, sm.eventPublisher, sm.logger, sm.validator)
	sm.logger.Info("Notification event service initialized")

	if sm.config.Question.Enabled {
		sm.questionService = NewQuestionService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventService)
		sm.logger.Info("Question service initialized")
	}

	sm.categoryService = NewCategoryService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Category service initialized")

	sm.testCaseService = NewTestCaseService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Test case service initialized")

	if sm.config.MCQ.Enabled {
		sm.mcqService = NewMCQService(sm.repo, sm.db, sm.logger, sm.validator)
		sm.logger.Info("MCQ service initialized")
	}

	if sm.config.Authoring.Enabled {
		sm.authoringService = NewAuthoringService(sm.repo, sm.db, sm.cacheManager, sm.logger, sm.validator, sm.eventService)
		sm.logger.Info("Authoring service initialized")
	}

	sm.templateService = NewTemplateService()
	sm.logger.Info("Template service initialized")

	if sm.config.Analytics.Enabled {
		sm.analyticsService = NewAnalyticsService(sm.repo, sm.db, sm.logger)
		sm.logger.Info("Analytics service initialized")
	}

	if sm.config.Notes.Enabled {
		sm.notesService = NewNotesService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventService)
		sm.logger.Info("Notes service initialized")
	}

	if sm.config.Import.Enabled {
		sm.importService = NewImportService(sm.repo, sm.db, sm.logger, sm.validator, sm.eventService)
		sm.logger.Info("Import service initialized")
	}

	sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("Course service initialized")

	sm.userService = NewUserService(sm.repo, sm.db, sm.logger, sm.validator)
	sm.logger.Info("User service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Question.Enabled && sm.questionService != nil {
		return sm.questionService
	}

	panic("question service not enabled or not initialized")
}

func (sm *serviceManager) Category() CategoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.categoryService != nil {
		return sm.categoryService
	}

	panic("category service not initialized")
}

func (sm *serviceManager) TestCase() TestCaseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.testCaseService != nil {
		return sm.testCaseService
	}

	panic("test case service not initialized")
}

func (sm *serviceManager) MCQ() MCQService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.MCQ.Enabled && sm.mcqService != nil {
		return sm.mcqService
	}

	panic("mcq service not enabled or not initialized")
}

func (sm *serviceManager) Authoring() AuthoringService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Authoring.Enabled && sm.authoringService != nil {
		return sm.authoringService
	}

	panic("authoring service not enabled or not initialized")
}

func (sm *serviceManager) Template() TemplateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.templateService != nil {
		return sm.templateService
	}

	panic("template service not initialized")
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Analytics.Enabled && sm.analyticsService != nil {
		return sm.analyticsService
	}

	panic("analytics service not enabled or not initialized")
}

func (sm *serviceManager) Notes() NotesService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Notes.Enabled && sm.notesService != nil {
		return sm.notesService
	}

	panic("notes service not enabled or not initialized")
}

func (sm *serviceManager) Import() ImportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Import.Enabled && sm.importService != nil {
		return sm.importService
	}

	panic("import service not enabled or not initialized")
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.courseService != nil {
		return sm.courseService
	}

	panic("course service not initialized")
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.userService != nil {
		return sm.userService
	}

	panic("user service not initialized")
}

func (sm *serviceManager) Events() NotificationEventService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.eventService != nil {
		return sm.eventService
	}

	panic("notification event service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.eventPublisher != nil {
		if err := sm.eventPublisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repositories", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// GetConfig returns the service manager configuration
func (sm *serviceManager) GetConfig() ServiceManagerConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.config
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}

// IsShutdown returns whether the service manager has been shut down
func (sm *serviceManager) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.shutdown
}
