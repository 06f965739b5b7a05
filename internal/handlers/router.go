package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/DmitryBilevich/product-sales-service/internal/services"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
	"github.com/DmitryBilevich/product-sales-service/internal/validator"
)

type HandlerManager struct {
	productHandler *ProductHandler
	importHandler  *ImportHandler
}

func NewHandlerManager(
	productService services.ProductService,
	importService services.ImportService,
	exportService services.ExportService,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		productHandler: NewProductHandler(productService, v, logger),
		importHandler:  NewImportHandler(importService, exportService, v, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	products := router.Group("/api/products")
	{
		// Catalog CRUD and search
		products.GET("", hm.productHandler.List)
		products.POST("", hm.productHandler.Create)
		products.GET("/check-sku", hm.productHandler.CheckSKU)
		products.POST("/search", hm.productHandler.Search)
		products.GET("/:id", hm.productHandler.Get)
		products.PUT("/:id", hm.productHandler.Update)
		products.DELETE("/:id", hm.productHandler.Delete)

		// Staged import pipeline
		products.POST("/upload-file", hm.importHandler.UploadFile)
		products.GET("/import-staging", hm.importHandler.GetImportStaging)
		products.PUT("/update-staging", hm.importHandler.UpdateStaging)
		products.DELETE("/delete-staging/:stagingId", hm.importHandler.DeleteStaging)
		products.POST("/process-import", hm.importHandler.ProcessImport)
		products.POST("/clear-import", hm.importHandler.ClearImport)

		// Export rendering
		products.POST("/export", hm.importHandler.ExportProducts)
		products.POST("/export-import", hm.importHandler.ExportImport)
		products.GET("/download-template", hm.importHandler.DownloadTemplate)
	}
}
