package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB())
}

// GetOrder handles GET /api/v1/orders/:id, including the order's lines
func GetOrder(c *gin.Context) {
	order, err := orderService().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}

// CreateOrder handles POST /api/v1/orders
func CreateOrder(c *gin.Context) {
	reconcile(c, services.OpCreate)
}

// EditOrder handles PUT /api/v1/orders/:id
func EditOrder(c *gin.Context) {
	reconcile(c, services.OpEdit)
}

// DeleteOrder handles DELETE /api/v1/orders/:id
func DeleteOrder(c *gin.Context) {
	reconcile(c, services.OpDelete)
}

// ReconcileOrder handles POST /api/v1/orders/reconcile with the operation named in the body
func ReconcileOrder(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	var req services.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	respondReconciled(c, sess, req)
}

// SelectOrderItem handles POST /api/v1/orders/selection. It answers with the quantities an
// order form should display after one add or remove, without touching stock.
func SelectOrderItem(c *gin.Context) {
	var req services.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := orderService().ApplySelection(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func reconcile(c *gin.Context, op services.ReconcileOp) {
	sess, ok := currentSession(c)
	if !ok {
		return
	}

	req := services.ReconcileRequest{Op: op, OrderNo: c.Param("id")}
	if op != services.OpDelete {
		if err := c.ShouldBindJSON(&req.Draft); err != nil {
			respondBindError(c, err)
			return
		}
	}
	respondReconciled(c, sess, req)
}

func respondReconciled(c *gin.Context, sess services.Session, req services.ReconcileRequest) {
	order, err := orderService().Reconcile(c.Request.Context(), sess, req)
	if err != nil {
		respondError(c, err)
		return
	}

	switch req.Op {
	case services.OpDelete:
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Order deleted",
		})
	case services.OpCreate:
		respondData(c, http.StatusCreated, order)
	default:
		respondData(c, http.StatusOK, order)
	}
}
