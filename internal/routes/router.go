// internal/routes/router.go
package routes

import (
	"github.com/hek316/workin/internal/config"
	"github.com/hek316/workin/internal/handlers"
	"github.com/hek316/workin/internal/middleware"
	"github.com/hek316/workin/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg *config.Config, hub *notify.Hub) *gin.Engine {
	r := gin.Default()

	authH := handlers.NewAuthHandler(db)
	attH := handlers.NewAttendanceHandler(db, cfg)
	apprH := handlers.NewApprovalHandler(db, cfg, hub)
	officeH := handlers.NewOfficeHandler(db)
	adminH := handlers.NewAdminHandler(db)
	reportH := handlers.NewReportHandler(db, cfg.Timezone)

	r.GET("/health", handlers.Health)

	api := r.Group("/api/v1")
	{
		api.POST("/auth/signup", authH.Signup)
		api.POST("/auth/login", authH.Login)
		api.POST("/auth/password", middleware.AuthRequired(), authH.ChangePassword)
		api.POST("/auth/totp/setup", middleware.AuthRequired(), authH.SetupTOTP)
		api.POST("/auth/totp/verify", middleware.AuthRequired(), authH.VerifyTOTPSetup)
	}

	user := r.Group("/api/v1")
	user.Use(middleware.AuthRequired())
	{
		user.POST("/attendance/check-in", attH.CheckIn)
		user.POST("/attendance/check-out", attH.CheckOut)
		user.GET("/attendance/today", attH.Today)
		user.GET("/attendance/history", attH.History)
		user.GET("/attendance/monthly", attH.Monthly)

		user.POST("/approvals", apprH.Create)
		user.GET("/approvals", apprH.ListMine)
		user.GET("/approvals/:id/watch", apprH.Watch)
	}

	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin())
	{
		admin.GET("/approvals/pending", apprH.ListPending)
		admin.POST("/approvals/:id/approve", apprH.Approve)
		admin.POST("/approvals/:id/reject", apprH.Reject)

		admin.GET("/offices", officeH.List)
		admin.POST("/offices", officeH.Create)
		admin.GET("/offices/:id", officeH.Get)
		admin.PUT("/offices/:id", officeH.Update)
		admin.DELETE("/offices/:id", officeH.Delete)

		admin.GET("/employees", adminH.ListEmployees)
		admin.GET("/attendance", adminH.DailyAttendance)
		admin.GET("/reports/monthly", reportH.Monthly)
	}

	return r
}
