package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateQuestionCache invalidates all question-related caches
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID uuid.UUID, creatorID string) {
	SafeDelete(ctx, cm.Question,
		fmt.Sprintf("id:%s", questionID),
		fmt.Sprintf("details:%s", questionID))

	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("creator:%s:*", creatorID))
	SafeInvalidatePattern(ctx, cm.Question, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("question:%s:*", questionID))
}

// InvalidateCategoryCache invalidates category listings after create/update/delete
func InvalidateCategoryCache(ctx context.Context, cm *CacheManager, categoryID uuid.UUID) {
	SafeDelete(ctx, cm.Category, fmt.Sprintf("id:%s", categoryID))
	SafeInvalidatePattern(ctx, cm.Category, "list:*")
	// Question listings embed category names
	SafeInvalidatePattern(ctx, cm.Question, "list:*")
}

// InvalidateMCQCache invalidates all MCQ-related caches
func InvalidateMCQCache(ctx context.Context, cm *CacheManager, mcqID uuid.UUID, creatorID string) {
	SafeDelete(ctx, cm.MCQ, fmt.Sprintf("id:%s", mcqID))
	SafeInvalidatePattern(ctx, cm.MCQ, fmt.Sprintf("creator:%s:*", creatorID))
	SafeInvalidatePattern(ctx, cm.MCQ, "list:*")
}

// InvalidateNoteCache invalidates note listings for a course
func InvalidateNoteCache(ctx context.Context, cm *CacheManager, noteID uuid.UUID, courseID uuid.UUID) {
	SafeDelete(ctx, cm.Note, fmt.Sprintf("id:%s", noteID))
	SafeInvalidatePattern(ctx, cm.Note, fmt.Sprintf("course:%s:*", courseID))
	SafeInvalidatePattern(ctx, cm.Note, "list:*")
}
