package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/codebench-edu/console-service/internal/config"
	"github.com/codebench-edu/console-service/internal/models"
	"github.com/codebench-edu/console-service/internal/repositories"
	"github.com/codebench-edu/console-service/internal/services"
	"github.com/codebench-edu/console-service/internal/utils"
)

type HandlerManager struct {
	questionHandler  *QuestionHandler
	categoryHandler  *CategoryHandler
	testCaseHandler  *TestCaseHandler
	mcqHandler       *MCQHandler
	authoringHandler *AuthoringHandler
	analyticsHandler *AnalyticsHandler
	notesHandler     *NotesHandler
	courseHandler    *CourseHandler
	userHandler      *UserHandler
	importHandler    *ImportHandler
	authMiddleware   *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		questionHandler:  NewQuestionHandler(serviceManager.Question(), logger),
		categoryHandler:  NewCategoryHandler(serviceManager.Category(), logger),
		testCaseHandler:  NewTestCaseHandler(serviceManager.TestCase(), logger),
		mcqHandler:       NewMCQHandler(serviceManager.MCQ(), logger),
		authoringHandler: NewAuthoringHandler(serviceManager.Authoring(), serviceManager.Template(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		notesHandler:     NewNotesHandler(serviceManager.Notes(), logger),
		courseHandler:    NewCourseHandler(serviceManager.Course(), logger),
		userHandler:      NewUserHandler(serviceManager.User(), logger),
		importHandler:    NewImportHandler(serviceManager.Import(), logger),
		authMiddleware:   authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	staffOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin)
	adminOnly := hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Question routes - Teachers and Admins only
		questions := v1.Group("/questions")
		questions.Use(staffOnly)
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/search", hm.questionHandler.SearchQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.GET("/:id/details", hm.questionHandler.GetQuestionWithDetails)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)

			// PDF statement and solution blobs
			questions.POST("/:id/upload-pdf", hm.questionHandler.UploadStatementPDF)
			questions.POST("/:id/upload-solution-pdf", hm.questionHandler.UploadSolutionPDF)
			questions.GET("/:id/pdf", hm.questionHandler.GetStatementPDF)
			questions.GET("/:id/solution-pdf", hm.questionHandler.GetSolutionPDF)

			// Nested test case management
			questions.POST("/:id/test-cases", hm.testCaseHandler.CreateTestCase)
			questions.GET("/:id/test-cases", hm.testCaseHandler.GetQuestionTestCases)
			questions.DELETE("/:id/test-cases", hm.testCaseHandler.DeleteQuestionTestCases)

			// Creator-specific routes
			questions.GET("/creator/:creator_id", hm.questionHandler.GetQuestionsByCreator)
			questions.GET("/creator/:creator_id/usage-stats", hm.questionHandler.GetQuestionUsageStats)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("", hm.categoryHandler.ListCategories)
			categories.GET("/:id", hm.categoryHandler.GetCategory)
			categories.POST("", staffOnly, hm.categoryHandler.CreateCategory)
			categories.PUT("/:id", staffOnly, hm.categoryHandler.UpdateCategory)
			categories.DELETE("/:id", staffOnly, hm.categoryHandler.DeleteCategory)
		}

		// Standalone test case routes - Teachers and Admins only
		testCases := v1.Group("/test-cases")
		testCases.Use(staffOnly)
		{
			testCases.GET("", hm.testCaseHandler.ListTestCases)
			testCases.GET("/:id", hm.testCaseHandler.GetTestCase)
			testCases.PUT("/:id", hm.testCaseHandler.UpdateTestCase)
			testCases.DELETE("/:id", hm.testCaseHandler.DeleteTestCase)
		}

		// MCQ routes - Teachers and Admins only
		mcqs := v1.Group("/mcqs")
		mcqs.Use(staffOnly)
		{
			mcqs.POST("", hm.mcqHandler.CreateMCQ)
			mcqs.GET("", hm.mcqHandler.ListMCQs)
			mcqs.GET("/search", hm.mcqHandler.SearchMCQs)
			mcqs.GET("/:id", hm.mcqHandler.GetMCQ)
			mcqs.PUT("/:id", hm.mcqHandler.UpdateMCQ)
			mcqs.DELETE("/:id", hm.mcqHandler.DeleteMCQ)
		}

		// Authoring wizard routes - Teachers and Admins only
		authoring := v1.Group("/authoring")
		authoring.Use(staffOnly)
		{
			authoring.POST("/sessions", hm.authoringHandler.StartSession)
			authoring.POST("/sessions/from-question/:question_id", hm.authoringHandler.StartSessionForQuestion)
			authoring.GET("/sessions/:session_id", hm.authoringHandler.GetSession)
			authoring.DELETE("/sessions/:session_id", hm.authoringHandler.CancelSession)

			authoring.PUT("/sessions/:session_id/basic-info", hm.authoringHandler.UpdateBasicInfo)
			authoring.PUT("/sessions/:session_id/statement", hm.authoringHandler.SetStatementHTML)
			authoring.PUT("/sessions/:session_id/solution", hm.authoringHandler.SetSolutionHTML)
			authoring.POST("/sessions/:session_id/statement-pdf", hm.authoringHandler.AttachStatementPDF)
			authoring.POST("/sessions/:session_id/solution-pdf", hm.authoringHandler.AttachSolutionPDF)

			authoring.POST("/sessions/:session_id/advance", hm.authoringHandler.Advance)
			authoring.POST("/sessions/:session_id/back", hm.authoringHandler.Back)
			authoring.POST("/sessions/:session_id/submit", hm.authoringHandler.Submit)

			// Editor templates
			authoring.GET("/templates", hm.authoringHandler.ListTemplates)
			authoring.GET("/templates/:role", hm.authoringHandler.GetTemplate)
		}

		// Analytics routes - Teachers and Admins only
		analytics := v1.Group("/analytics")
		analytics.Use(staffOnly)
		{
			analytics.GET("/dashboard", hm.analyticsHandler.GetDashboardStats)
			analytics.GET("/activities/:activity_id/overview", hm.analyticsHandler.GetActivityOverview)
			analytics.GET("/activities/:activity_id/classes/:class_id", hm.analyticsHandler.GetClassPerformance)
			analytics.GET("/activities/:activity_id/students/:student_id", hm.analyticsHandler.GetStudentSubmission)
			analytics.GET("/activities/:activity_id/report", hm.analyticsHandler.GetActivityReport)
			analytics.GET("/activities/:activity_id/report/export", hm.analyticsHandler.ExportActivityReport)
		}

		// Notes portal - student browsing scoped to enrolled courses
		notes := v1.Group("/notes")
		{
			notes.GET("", hm.notesHandler.ListNotes)
			notes.GET("/files/:file_id", hm.notesHandler.DownloadNoteFile)
			notes.POST("/bulk-download", hm.notesHandler.BulkDownloadNotes)
			notes.GET("/:id", hm.notesHandler.GetNote)
			notes.GET("/:id/archive", hm.notesHandler.DownloadNoteArchive)

			// Teacher note management
			notes.POST("", staffOnly, hm.notesHandler.CreateNote)
			notes.PUT("/:id", staffOnly, hm.notesHandler.UpdateNote)
			notes.DELETE("/:id", staffOnly, hm.notesHandler.DeleteNote)
			notes.POST("/:id/files", staffOnly, hm.notesHandler.AddNoteFile)
			notes.DELETE("/files/:file_id", staffOnly, hm.notesHandler.DeleteNoteFile)
			notes.GET("/mine", staffOnly, hm.notesHandler.GetTeacherNotes)
			notes.GET("/stats", staffOnly, hm.notesHandler.GetNoteStats)
		}

		// Course routes
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/me", hm.courseHandler.GetMyCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.POST("/:id/enroll", staffOnly, hm.courseHandler.EnrollStudent)
			courses.DELETE("/:id/enroll/:student_id", staffOnly, hm.courseHandler.UnenrollStudent)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetMe)
			users.GET("", staffOnly, hm.userHandler.ListUsers)
			users.GET("/search", staffOnly, hm.userHandler.SearchUsers)
			users.GET("/:id", staffOnly, hm.userHandler.GetUser)
		}

		// Admin import routes
		admin := v1.Group("/admin")
		admin.Use(adminOnly)
		{
			admin.POST("/import/jsonl", hm.importHandler.ImportJSONL)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "console-service",
		})
	})
}
