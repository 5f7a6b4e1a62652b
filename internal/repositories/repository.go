package repositories

import "context"

// Repository aggregates all repository interfaces behind one handle
type Repository interface {
	// Question domain
	Question() QuestionRepository
	QuestionCategory() QuestionCategoryRepository
	QuestionTestCase() QuestionTestCaseRepository
	MCQ() MCQRepository

	// Notes domain
	Note() NoteRepository

	// Course domain
	Course() CourseRepository

	// Analytics domain (read-only)
	Analytics() AnalyticsRepository

	// User domain (identities owned by Casdoor)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
