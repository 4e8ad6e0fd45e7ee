package http

import "github.com/gin-gonic/gin"

func RegisterProposalRoutes(r *gin.Engine, handler *ProposalHandler) {
	proposals := r.Group("/proposals")
	{
		proposals.POST("/", handler.CreateProposal)
		proposals.GET("/:id", handler.GetProposal)
		proposals.GET("/", handler.ListProposals)
		proposals.PUT("/:id", handler.UpdateProposal)
		proposals.DELETE("/:id", handler.DeleteProposal)
	}
}
