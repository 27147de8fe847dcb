package service

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/pkg/logger"
)

var ErrProductNotFound = errors.New("product not found")

type ProductService interface {
	GetAllProducts() ([]model.Product, error)
	GetPopularProducts() ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	ExportCatalog() (*excelize.File, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		logger.Error("Failed to fetch catalog", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetPopularProducts() ([]model.Product, error) {
	products, err := s.productRepo.FindPopular()
	if err != nil {
		logger.Error("Failed to fetch popular products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ExportCatalog renders the whole catalog as an xlsx workbook for
// back-office use.
func (s *productService) ExportCatalog() (*excelize.File, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"ID", "Name", "Price", "Price Value", "Package Size", "Popular", "Image", "Description"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, p := range products {
		values := []interface{}{p.ID, p.Name, p.Price, p.PriceValue, p.PackageSize, p.Popular, p.Image, p.Description}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	logger.Info("Catalog export generated", map[string]interface{}{
		"products": len(products),
	})
	return f, nil
}
