package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/sports-center-backend/cache"
	"github.com/vnkhanh/sports-center-backend/controllers"
	"github.com/vnkhanh/sports-center-backend/middleware"
	"github.com/vnkhanh/sports-center-backend/models"
	"github.com/vnkhanh/sports-center-backend/services"
	"github.com/vnkhanh/sports-center-backend/utils"
	"github.com/vnkhanh/sports-center-backend/ws"
)

// Deps là các thành phần dùng chung được tạo trong main.
type Deps struct {
	DB             *gorm.DB
	Cache          cache.Cache
	Stats          *services.StatsService
	Snapshot       *services.SnapshotJob
	Avatars        utils.AvatarStore
	Mailer         *utils.Mailer
	GoogleClientID string
}

const (
	admin        = models.RoleAdmin
	trainer      = models.RoleTrainer
	receptionist = models.RoleReceptionist
	member       = models.RoleMember
)

func SetupRouter(r *gin.Engine, d Deps) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck(d.DB, d.Cache))
	r.GET("/ws/notifications", ws.HandleNotificationWebSocket)

	r.Use(middleware.DBMiddleware(d.DB))

	auth := r.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/google", controllers.GoogleLogin(d.GoogleClientID))
	}

	users := &controllers.UserHandler{Avatars: d.Avatars}
	r.POST("/users", middleware.OptionalAuthMiddleware(), users.CreateUser)

	api := r.Group("")
	api.Use(middleware.AuthMiddleware())

	//Tài khoản
	api.GET("/users", middleware.RequireRoles(admin), users.ListUsers)
	api.GET("/users/current-user", users.CurrentUser)
	api.PUT("/users/:id", users.UpdateUser)
	api.PATCH("/users/:id", users.UpdateUser)

	accounts(api, d.Mailer, "/members", member,
		[]models.UserRole{admin, receptionist, trainer},
		[]models.UserRole{admin, receptionist})
	accounts(api, d.Mailer, "/trainers", trainer,
		[]models.UserRole{admin, receptionist, trainer, member},
		[]models.UserRole{admin})
	accounts(api, d.Mailer, "/receptionists", receptionist,
		[]models.UserRole{admin},
		[]models.UserRole{admin})

	//Lớp học
	classes := api.Group("/classes")
	{
		classes.GET("", controllers.ListClasses)
		classes.GET("/:id", controllers.GetClass)
		classes.POST("", middleware.RequireRoles(admin, receptionist), controllers.CreateClass)
		classes.PUT("/:id", middleware.RequireRoles(admin, receptionist), controllers.UpdateClass)
		classes.PATCH("/:id", middleware.RequireRoles(admin, receptionist), controllers.UpdateClass)
		classes.DELETE("/:id", middleware.RequireRoles(admin, receptionist), controllers.DeleteClass)
		classes.POST("/:id/restore", middleware.RequireRoles(admin), controllers.RestoreClass)
	}

	//Đăng ký lớp: phạm vi theo vai trò nằm trong services.Scope
	enrollments := api.Group("/enrollments")
	{
		enrollments.GET("", controllers.ListEnrollments)
		enrollments.GET("/:id", controllers.GetEnrollment)
		enrollments.POST("", controllers.CreateEnrollment)
		enrollments.DELETE("/:id", controllers.DeleteEnrollment)
	}

	trainerViews := api.Group("/trainer", middleware.RequireRoles(trainer))
	{
		trainerViews.GET("/enrollments", controllers.TrainerClasses)
		trainerViews.GET("/students", controllers.TrainerStudents)
	}

	progress := api.Group("/progress")
	{
		progress.GET("", controllers.ListProgress)
		progress.GET("/:id", controllers.GetProgress)
		progress.POST("", middleware.RequireRoles(admin, trainer), controllers.CreateProgress)
		progress.PUT("/:id", middleware.RequireRoles(admin, trainer), controllers.UpdateProgress)
		progress.PATCH("/:id", middleware.RequireRoles(admin, trainer), controllers.UpdateProgress)
		progress.DELETE("/:id", middleware.RequireRoles(admin, trainer), controllers.DeleteProgress)
	}

	appointments := api.Group("/appointments")
	{
		appointments.GET("", controllers.ListAppointments)
		appointments.GET("/:id", controllers.GetAppointment)
		appointments.POST("", middleware.RequireRoles(admin, receptionist, member), controllers.CreateAppointment)
		appointments.PUT("/:id", controllers.UpdateAppointment)
		appointments.PATCH("/:id", controllers.UpdateAppointment)
		appointments.DELETE("/:id", controllers.DeleteAppointment)
	}

	payments := api.Group("/payments")
	{
		payments.GET("", controllers.ListPayments)
		payments.GET("/:id", controllers.GetPayment)
		payments.POST("", middleware.RequireRoles(admin, receptionist, member), controllers.CreatePayment)
		payments.PUT("/:id", middleware.RequireRoles(admin, receptionist), controllers.UpdatePayment)
		payments.PATCH("/:id", middleware.RequireRoles(admin, receptionist), controllers.UpdatePayment)
		payments.DELETE("/:id", middleware.RequireRoles(admin, receptionist), controllers.DeletePayment)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", controllers.GetNotifications)
		notifications.GET("/unread-count", controllers.GetUnreadCount)
		notifications.POST("/read-all", controllers.MarkAllAsRead)
		notifications.GET("/:id", controllers.GetNotification)
		notifications.PATCH("/:id/read", controllers.MarkNotificationAsRead)
		notifications.POST("", middleware.RequireRoles(admin, receptionist), controllers.CreateNotification)
		notifications.DELETE("/:id", controllers.DeleteNotification)
	}

	news := api.Group("/internalnews", middleware.RequireRoles(admin, trainer, receptionist))
	{
		news.GET("", controllers.ListInternalNews)
		news.GET("/:id", controllers.GetInternalNews)
		news.POST("", middleware.RequireRoles(trainer), controllers.CreateInternalNews)
		news.PUT("/:id", controllers.UpdateInternalNews)
		news.PATCH("/:id", controllers.UpdateInternalNews)
		news.DELETE("/:id", controllers.DeleteInternalNews)
	}

	//Thống kê
	stats := &controllers.StatsHandler{Stats: d.Stats, Snapshot: d.Snapshot}
	statsGroup := api.Group("/stats", middleware.RequireRoles(admin))
	{
		statsGroup.GET("", stats.ListSnapshots)
		statsGroup.POST("/snapshot", stats.RunSnapshot)
		statsGroup.GET("/members", stats.MemberStats())
		statsGroup.GET("/revenue", stats.RevenueStats())
		statsGroup.GET("/classes", stats.ClassStats())
		statsGroup.GET("/:metric/export", stats.Export)
	}

	return r
}

// accounts đăng ký CRUD cho một loại tài khoản theo vai trò.
func accounts(api *gin.RouterGroup, mailer *utils.Mailer, path string, role models.UserRole, readers, writers []models.UserRole) {
	g := api.Group(path)
	read := middleware.RequireRoles(readers...)
	write := middleware.RequireRoles(writers...)

	g.GET("", read, controllers.ListAccounts(role))
	g.GET("/:id", read, controllers.GetAccount(role))
	g.POST("", write, controllers.CreateAccount(role, mailer))
	g.PUT("/:id", write, controllers.UpdateAccount(role))
	g.PATCH("/:id", write, controllers.UpdateAccount(role))
	g.DELETE("/:id", write, controllers.DeleteAccount(role))
}
