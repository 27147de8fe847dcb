package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/app/service"
	"github.com/clockert/fram-backend/internal/db"
)

func setupProductControllerTest(t *testing.T) (*gin.Engine, []model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	productRepo := repository.NewProductRepository(testDB)
	products := []model.Product{
		{Name: "Rhubarb", Price: "45 kr / kg", PriceValue: 45, PackageSize: "1 kg", Popular: true},
		{Name: "Radishes", Price: "25 kr / bunt", PriceValue: 25, PackageSize: "1 bunt"},
	}
	require.NoError(t, productRepo.BulkCreate(products, 100))
	created, err := productRepo.FindAll()
	require.NoError(t, err)

	productController := NewProductController(service.NewProductService(productRepo))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/products", productController.GetAllProducts)
	router.GET("/api/products/popular", productController.GetPopularProducts)
	router.GET("/api/products/export", productController.ExportCatalog)
	router.GET("/api/products/:id", productController.GetProductByID)

	return router, created
}

func TestProductController_GetAllProducts(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []model.Product `json:"products"`
		Count    int             `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Rhubarb", resp.Products[0].Name)
	assert.Equal(t, "45 kr / kg", resp.Products[0].Price)
	assert.Equal(t, "1 kg", resp.Products[0].PackageSize)
}

func TestProductController_GetPopularProducts(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/popular", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Products []model.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Rhubarb", resp.Products[0].Name)
}

func TestProductController_GetProductByID(t *testing.T) {
	router, products := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/products/%d", products[1].ID), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Product model.Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Radishes", resp.Product.Name)
}

func TestProductController_GetProductByIDNotFound(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/9999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PRODUCT_NOT_FOUND")
}

func TestProductController_GetProductByIDInvalid(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductController_ExportCatalog(t *testing.T) {
	router, _ := setupProductControllerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "fram-catalog-")
	assert.NotZero(t, w.Body.Len())
}
