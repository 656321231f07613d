package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/kingfisher-trust/kingfisher-records/config"
	"github.com/kingfisher-trust/kingfisher-records/middleware"
	"github.com/kingfisher-trust/kingfisher-records/models"
	"github.com/kingfisher-trust/kingfisher-records/services"
)

func pickStaff(r *services.Records) *services.Repository[models.Staff, *models.Staff] {
	return r.Staff
}

func pickDonors(r *services.Records) *services.Repository[models.Donor, *models.Donor] {
	return r.Donors
}

func pickCustomers(r *services.Records) *services.Repository[models.Customer, *models.Customer] {
	return r.Customers
}

func pickRecipients(r *services.Records) *services.Repository[models.Recipient, *models.Recipient] {
	return r.Recipients
}

func pickSuppliers(r *services.Records) *services.Repository[models.Supplier, *models.Supplier] {
	return r.Suppliers
}

func pickItems(r *services.Records) *services.Repository[models.Item, *models.Item] {
	return r.Items
}

func pickDonations(r *services.Records) *services.Repository[models.Donation, *models.Donation] {
	return r.Donations
}

func pickFoodDonations(r *services.Records) *services.Repository[models.FoodDonation, *models.FoodDonation] {
	return r.FoodDonations
}

func pickExpenditures(r *services.Records) *services.Repository[models.Expenditure, *models.Expenditure] {
	return r.Expenditures
}

func pickOrders(r *services.Records) *services.Repository[models.Order, *models.Order] {
	return r.Orders
}

// RegisterRoutes mounts the bridge API under /api/v1. Everything except login and
// password reset needs a valid session.
func RegisterRoutes(v1 *gin.RouterGroup, cfg *config.Config) {
	v1.POST("/auth/login", Login)
	v1.POST("/auth/password-reset", ResetPassword)

	api := v1.Group("")
	api.Use(middleware.EnsureValidSession(cfg, SessionLoader{}))
	{
		api.GET("/session", GetSession)
		api.GET("/access", CheckAccess)

		RegisterRecordRoutes[models.Donor, *models.Donor](api, "/donors", pickDonors)
		RegisterRecordRoutes[models.Customer, *models.Customer](api, "/customers", pickCustomers)
		RegisterRecordRoutes[models.Recipient, *models.Recipient](api, "/recipients", pickRecipients)
		RegisterRecordRoutes[models.Supplier, *models.Supplier](api, "/suppliers", pickSuppliers)
		RegisterRecordRoutes[models.Item, *models.Item](api, "/items", pickItems)
		RegisterRecordRoutes[models.Donation, *models.Donation](api, "/donations", pickDonations)
		RegisterRecordRoutes[models.FoodDonation, *models.FoodDonation](api, "/food-donations", pickFoodDonations)
		RegisterRecordRoutes[models.Expenditure, *models.Expenditure](api, "/expenditures", pickExpenditures)

		api.POST("/food-donations/:id/give-away", middleware.RequireAccess(services.LevelEdit), GiveAwayFood)
		api.GET("/food-donations/:id/give-away", GetFoodRecipient)

		api.GET("/staff", ListRecords[models.Staff, *models.Staff](pickStaff))
		api.GET("/staff/:id", GetRecord[models.Staff, *models.Staff](pickStaff))
		api.POST("/staff", middleware.RequireAccess(services.LevelDelete), CreateStaff)
		api.PUT("/staff/:id", UpdateStaff)
		api.DELETE("/staff/:id", DeleteStaff)

		api.GET("/orders", ListRecords[models.Order, *models.Order](pickOrders))
		api.GET("/orders/:id", GetOrder)
		api.POST("/orders", middleware.RequireAccess(services.LevelEdit), CreateOrder)
		api.POST("/orders/selection", middleware.RequireAccess(services.LevelEdit), SelectOrderItem)
		api.POST("/orders/reconcile", middleware.RequireAccess(services.LevelEdit), ReconcileOrder)
		api.PUT("/orders/:id", middleware.RequireAccess(services.LevelEdit), EditOrder)
		api.DELETE("/orders/:id", middleware.RequireAccess(services.LevelDelete), DeleteOrder)

		api.GET("/reports/:kind", GetReport)
		api.POST("/reports/:kind/export", ExportReport)
	}
}
