package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/helxplatform/eduhelx-student-ext/api/handler"
)

type Handlers struct {
	Assignments   *apiHandler.AssignmentsHandler
	Course        *apiHandler.CourseHandler
	Submission    *apiHandler.SubmissionHandler
	Settings      *apiHandler.SettingsHandler
	Notifications *apiHandler.NotificationsHandler
	Health        *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	r.GET("/api/v1/assignments", authMiddleware(handlers.Assignments.Get))
	r.PATCH("/api/v1/assignments/{id}", authMiddleware(handlers.Assignments.Update))
	r.GET("/api/v1/course_student", authMiddleware(handlers.Course.GetCourseAndStudent))
	r.GET("/api/v1/roster", authMiddleware(handlers.Course.GetRoster))
	r.POST("/api/v1/submit_assignment", authMiddleware(handlers.Submission.Submit))
	r.GET("/api/v1/notifications", authMiddleware(handlers.Notifications.Take))
	r.GET("/api/v1/settings", authMiddleware(handlers.Settings.Get))
	r.POST("/api/v1/mark_fork_cloned", authMiddleware(handlers.Settings.MarkForkCloned))

	return r
}
