package http

import (
	"WrapDesk/internal/config"
	"WrapDesk/internal/initial"
	jwtMiddleware "WrapDesk/internal/middleware/jwt"
	notificationService "WrapDesk/internal/modules/notification/application/service"
	notificationPersistence "WrapDesk/internal/modules/notification/infrastructure/persistence"
	notificationHandler "WrapDesk/internal/modules/notification/interface/http"
	notificationScheduler "WrapDesk/internal/modules/notification/interface/scheduler"
	"WrapDesk/internal/modules/user/application/service"
	"WrapDesk/internal/modules/user/infrastructure/persistence"
	userHandler "WrapDesk/internal/modules/user/interface/http"
	"WrapDesk/pkg/ssl"
	"WrapDesk/pkg/ws"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var GE *gin.Engine

// Sweeper 定时投递/清理任务，由 main 启动和关停
var Sweeper *notificationScheduler.SweeperManager

// Hub 通知推送用的 WebSocket 集线器
var Hub *ws.Hub

func init() {
	conf := config.GetConfig()

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	initial.InitRedis()
	publisher := initial.InitKafkaPublisher()

	Hub = ws.NewHub()

	userRepo := persistence.NewUserInfoRepository(initial.GormDB)
	notifRepo := notificationPersistence.NewNotificationRepository(initial.GormDB)

	userSvc := service.NewUserInfoService(userRepo)
	notifSvc := notificationService.NewNotificationService(
		notifRepo, userRepo, Hub, publisher,
		conf.KafkaConfig.NotifyTopic,
		conf.NotificationConfig.StatsCacheSeconds,
	)
	exportSvc := notificationService.NewExportService(notifRepo)

	Sweeper = notificationScheduler.NewSweeperManager(notifSvc, conf.NotificationConfig.SweepCron, conf.NotificationConfig.RetentionDays)

	userH := userHandler.NewUserInfoHandler(userSvc)
	notifH := notificationHandler.NewNotificationHandler(notifSvc, exportSvc)
	wsH := notificationHandler.NewWsHandler(Hub)

	GE.POST("/login", userH.Login)
	GE.POST("/register", userH.Register)
	GE.GET("/wss", wsH.Connect)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/auth/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"uuid":     c.GetString("uuid"),
			"username": c.GetString("username"),
		})
	})

	authed.GET("/users/recipients", userH.ListRecipients)

	authed.GET("/Notifications", notifH.List)
	authed.GET("/Notifications/stats", notifH.Stats)
	authed.GET("/Notifications/export/:format", notifH.Export)
	authed.GET("/Notifications/:id", notifH.GetById)
	authed.POST("/Notifications", notifH.Create)
	authed.POST("/Notifications/bulk", notifH.SendBulk)
	authed.PUT("/Notifications/mark-read", notifH.MarkManyAsRead)
	authed.PUT("/Notifications/mark-all-read", notifH.MarkAllAsRead)
	authed.PUT("/Notifications/:id", notifH.Update)
	authed.PUT("/Notifications/:id/read", notifH.MarkAsRead)
	authed.DELETE("/Notifications/:id", notifH.Delete)

	// 业务事件消费（Kafka 未启用时跳过）
	initial.StartEventConsumer(notifSvc)
}
