package http

import "github.com/gin-gonic/gin"

func RegisterCustomerRoutes(r *gin.Engine, handler *CustomerHandler) {
	customers := r.Group("/customers")
	{
		customers.POST("/", handler.CreateCustomer)
		customers.GET("/:id", handler.GetCustomer)
		customers.GET("/", handler.ListCustomers)
		customers.PUT("/:id", handler.UpdateCustomer)
		customers.DELETE("/:id", handler.DeleteCustomer)
	}
}
