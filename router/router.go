package router

import (
	"net/http"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/handler"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/middleware"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/service"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/view"
	"github.com/gin-gonic/gin"
)

// Logical paths of the application.
const (
	LoginPath        = "/"
	BillsPath        = "/employee/bills"
	NewBillPath      = "/employee/bill/new"
	StageFilePath    = "/employee/bill/new/file"
	JustificatifPath = "/employee/bills/justificatif"
	AdminHomePath    = "/admin/dashboard"
)

// HomeFor maps a role to its home page.
func HomeFor(role string) string {
	if role == model.RoleAdmin {
		return AdminHomePath
	}
	return BillsPath
}

// New wires the middleware chain, the pages and their handlers. The
// store may be nil; the bills page then renders empty and the creation
// flow is not registered.
func New(cfg *config.Config, store service.Store) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimit(&cfg.Server.RateLimit))
	router.Use(middleware.Sessions(&cfg.Auth))

	router.GET("/static/billed.js", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", view.StaticJS())
	})

	authHandler := handler.NewAuthHandler(cfg, LoginPath, HomeFor)
	router.GET(LoginPath, authHandler.LoginPage)
	router.POST(LoginPath, authHandler.Login)
	router.GET("/auth/logout", authHandler.Logout)

	billsHandler := handler.NewBillsHandler(store, NewBillPath, JustificatifPath)
	newBillHandler := handler.NewNewBillHandler(store, &cfg.Validation, BillsPath, BillsPath, StageFilePath)

	employee := router.Group("/employee")
	employee.Use(middleware.RequireRole(model.RoleEmployee, LoginPath, HomeFor))
	{
		employee.GET("/bills", billsHandler.ListPage)
		employee.GET("/bills/justificatif", billsHandler.Justificatif)
		employee.GET("/bill/new", newBillHandler.ShowPage)
		if store != nil {
			employee.POST("/bill/new/file", newBillHandler.StageFile)
			employee.POST("/bills", newBillHandler.Submit)
		}
	}

	admin := router.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin, LoginPath, HomeFor))
	{
		// Admin workflow lives in a separate application; only the role
		// home exists here so role redirects have a landing page.
		admin.GET("/dashboard", func(c *gin.Context) {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.ErrorUI("Tableau de bord administrateur indisponible")))
		})
	}

	router.NoRoute(func(c *gin.Context) {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(view.ErrorUI("Erreur 404")))
	})

	return router
}
