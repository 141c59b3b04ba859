// Package server exposes the application over HTTP.
package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/grouppay/grouppay/internal/service"
	"github.com/grouppay/grouppay/internal/storage"
)

// Server wires the service layer to a gin router.
type Server struct {
	engine *gin.Engine
	bills  *service.BillService
	groups *service.GroupService
}

// New builds a Server over the given storage backend.
func New(store storage.Store) *Server {
	s := &Server{
		engine: gin.New(),
		bills:  service.NewBillService(store),
		groups: service.NewGroupService(store),
	}

	s.engine.Use(gin.Recovery(), requestLogger(), requestMetrics())
	s.engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	{
		api.POST("/receipts/parse", s.parseReceipt)
		api.POST("/splits/preview", s.previewSplit)

		api.POST("/bills", s.createBill)
		api.GET("/bills/:id", s.getBill)
		api.PUT("/bills/:id", s.updateBill)
		api.DELETE("/bills/:id", s.deleteBill)

		api.POST("/groups", s.createGroup)
		api.GET("/groups", s.listGroups)
		api.GET("/groups/:id", s.getGroup)
		api.PUT("/groups/:id", s.updateGroup)
		api.DELETE("/groups/:id", s.deleteGroup)
		api.POST("/groups/:id/members", s.addGroupMembers)
		api.GET("/groups/:id/bills", s.listGroupBills)
		api.GET("/groups/:id/balances", s.groupBalances)
		api.POST("/groups/:id/settlements", s.recordSettlement)
		api.GET("/groups/:id/settlements", s.listSettlements)
		api.DELETE("/settlements/:id", s.deleteSettlement)
	}
}

// Handler returns the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the server on the given address.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}
