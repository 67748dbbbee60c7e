package controllers

import (
	"github.com/Anand-732/MartLedger/models"
	"github.com/Anand-732/MartLedger/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdminCatalogController manages the shops, products and shipping rates
// that checkout reads.
type AdminCatalogController struct {
	db *gorm.DB
}

func NewAdminCatalogController(db *gorm.DB) *AdminCatalogController {
	return &AdminCatalogController{db: db}
}

// CreateShop registers a new shop.
func (ctl *AdminCatalogController) CreateShop(c *gin.Context) {
	utils.LogInfo("CreateShop called")

	var req struct {
		Name          string `json:"name" binding:"required"`
		OriginPincode string `json:"origin_pincode" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. Name and origin pincode are required", err.Error())
		return
	}

	shop := models.Shop{Name: req.Name, OriginPincode: req.OriginPincode, IsActive: true}
	if err := ctl.db.Create(&shop).Error; err != nil {
		utils.LogError("Failed to create shop %s: %v", req.Name, err)
		utils.InternalServerError(c, "Failed to create shop", err.Error())
		return
	}

	utils.LogInfo("Shop %s created with ID: %d", shop.Name, shop.ID)
	utils.Created(c, "Shop created successfully", shop)
}

// SetShopActive toggles whether a shop accepts orders.
func (ctl *AdminCatalogController) SetShopActive(c *gin.Context) {
	utils.LogInfo("SetShopActive called")
	shopID, ok := idParam(c, "id")
	if !ok {
		utils.BadRequest(c, "Invalid shop ID", nil)
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "is_active is required", err.Error())
		return
	}

	res := ctl.db.Model(&models.Shop{}).Where("id = ?", shopID).Update("is_active", *req.IsActive)
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to update shop", res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Shop not found")
		return
	}

	utils.LogInfo("Shop ID: %d active set to %v", shopID, *req.IsActive)
	utils.Success(c, "Shop updated successfully", nil)
}

// CreateProduct adds a product to a shop's catalog.
func (ctl *AdminCatalogController) CreateProduct(c *gin.Context) {
	utils.LogInfo("CreateProduct called")

	var req struct {
		ShopID      uint            `json:"shop_id" binding:"required"`
		Name        string          `json:"name" binding:"required"`
		Price       decimal.Decimal `json:"price" binding:"required"`
		Stock       int             `json:"stock"`
		WeightGrams int             `json:"weight_grams"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. Shop, name and price are required", err.Error())
		return
	}
	if !req.Price.IsPositive() {
		utils.BadRequest(c, "Price must be positive", nil)
		return
	}
	if req.Stock < 0 {
		utils.BadRequest(c, "Stock cannot be negative", nil)
		return
	}

	var shop models.Shop
	if err := ctl.db.First(&shop, req.ShopID).Error; err != nil {
		utils.NotFound(c, "Shop not found")
		return
	}

	product := models.Product{
		ShopID:      req.ShopID,
		Name:        req.Name,
		Price:       utils.RoundMoney(req.Price),
		Stock:       req.Stock,
		WeightGrams: req.WeightGrams,
	}
	if err := ctl.db.Create(&product).Error; err != nil {
		utils.LogError("Failed to create product %s: %v", req.Name, err)
		utils.InternalServerError(c, "Failed to create product", err.Error())
		return
	}

	utils.LogInfo("Product %s created with ID: %d for shop ID: %d", product.Name, product.ID, product.ShopID)
	utils.Created(c, "Product created successfully", product)
}

// UpsertShippingRate creates or updates the rate table row for a pincode.
func (ctl *AdminCatalogController) UpsertShippingRate(c *gin.Context) {
	utils.LogInfo("UpsertShippingRate called")

	var req struct {
		Pincode     string          `json:"pincode" binding:"required"`
		BaseCharge  decimal.Decimal `json:"base_charge" binding:"required"`
		PerKgCharge decimal.Decimal `json:"per_kg_charge"`
		EtaDays     int             `json:"eta_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request. Pincode and base charge are required", err.Error())
		return
	}

	var rate models.ShippingRate
	err := ctl.db.Where("pincode = ?", req.Pincode).First(&rate).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Failed to look up shipping rate", err.Error())
		return
	}

	rate.Pincode = req.Pincode
	rate.BaseCharge = utils.RoundMoney(req.BaseCharge)
	rate.PerKgCharge = utils.RoundMoney(req.PerKgCharge)
	rate.EtaDays = req.EtaDays
	rate.IsActive = true

	if err := ctl.db.Save(&rate).Error; err != nil {
		utils.LogError("Failed to save shipping rate for pincode %s: %v", req.Pincode, err)
		utils.InternalServerError(c, "Failed to save shipping rate", err.Error())
		return
	}

	utils.LogInfo("Shipping rate saved for pincode %s", rate.Pincode)
	utils.Success(c, "Shipping rate saved successfully", rate)
}
