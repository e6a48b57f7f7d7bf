package router

import (
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/config"
	"github.com/AeThex-Corporation/AeThex-OS-sub000/internal/handler"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "revenue-ledger-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 收入事件相关路由
		revenueHandler := handler.NewRevenueHandler(db)
		splitHandler := handler.NewSplitHandler(db)
		revenue := v1.Group("/revenue")
		{
			revenue.POST("/events", revenueHandler.RecordRevenueEvent)
			revenue.GET("/events/:id", revenueHandler.GetRevenueEvent)
			revenue.GET("/events/:id/allocations", splitHandler.GetEventAllocations)
		}

		// 项目维度路由：收入列表、分成规则、协作者
		proposalHandler := handler.NewProposalHandler(db)
		projects := v1.Group("/projects")
		{
			projects.GET("/:id/revenue", revenueHandler.GetProjectRevenueEvents)
			projects.POST("/:id/splits/compute", splitHandler.ComputeRevenueSplits)
			projects.POST("/:id/splits", splitHandler.UpdateRevenueSplit)
			projects.GET("/:id/splits/active", splitHandler.GetActiveSplit)
			projects.GET("/:id/collaborators", proposalHandler.GetProjectCollaborators)
		}

		// 托管账户相关路由
		escrowHandler := handler.NewEscrowHandler(db)
		escrow := v1.Group("/escrow")
		{
			escrow.GET("/balance", escrowHandler.GetEscrowBalance)
			escrow.POST("/deposits", escrowHandler.DepositToEscrow)
		}

		// 提现相关路由
		payoutHandler := handler.NewPayoutHandler(db)
		payouts := v1.Group("/payouts")
		{
			payouts.POST("", payoutHandler.ProcessPayout)
			payouts.GET("", payoutHandler.GetPayoutHistory)
			payouts.POST("/:id/complete", payoutHandler.CompletePayout)
			payouts.POST("/:id/fail", payoutHandler.FailPayout)
		}
		payoutRequests := v1.Group("/payout-requests")
		{
			payoutRequests.POST("", payoutHandler.CreatePayoutRequest)
			payoutRequests.PUT("/:id/review", payoutHandler.ReviewPayoutRequest)
		}
		payoutMethods := v1.Group("/payout-methods")
		{
			payoutMethods.POST("", payoutHandler.RegisterPayoutMethod)
			payoutMethods.GET("", payoutHandler.ListPayoutMethods)
		}

		// 分成提案相关路由
		proposals := v1.Group("/proposals")
		{
			proposals.POST("", proposalHandler.CreateSplitProposal)
			proposals.GET("/:id", proposalHandler.GetProposalWithVotes)
			proposals.POST("/:id/votes", proposalHandler.CastVote)
			proposals.POST("/:id/evaluate", proposalHandler.EvaluateProposal)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Org-Id")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
