package db

import (
	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/pkg/logger"
	"github.com/clockert/fram-backend/pkg/price"
)

// Seed loads the default catalog when the products table is empty. The seed
// command can replace it with a full catalog file.
func Seed() error {
	var count int64
	if err := DB.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Catalog already seeded, skipping", map[string]interface{}{
			"products": count,
		})
		return nil
	}

	logger.Info("Seeding default catalog...")

	products := defaultCatalog()
	if err := DB.Create(&products).Error; err != nil {
		logger.Error("Failed to seed catalog", err)
		return err
	}

	logger.Info("Catalog seeded", map[string]interface{}{
		"products": len(products),
	})
	return nil
}

// defaultCatalog is the seasonal produce list from the partner farms.
func defaultCatalog() []model.Product {
	items := []model.Product{
		{Name: "Radishes", Price: "25 kr / bunt", PackageSize: "1 bunt", Image: "/assets/images/radishes.webp", Popular: true, Description: "Crisp spring radishes from Braastad Gaard."},
		{Name: "Spring Onions", Price: "20 kr / bunt", PackageSize: "1 bunt", Image: "/assets/images/spring-onions.webp", Popular: true, Description: "Mild spring onions, harvested to order."},
		{Name: "Early Lettuce", Price: "30 kr", PackageSize: "1 head", Image: "/assets/images/lettuce.webp", Popular: true, Description: "Tender greenhouse lettuce."},
		{Name: "Rhubarb", Price: "45 kr / kg", PackageSize: "1 kg", Image: "/assets/images/rhubarb.webp", Popular: true, Description: "Tart rhubarb stalks, perfect for compote."},
		{Name: "Tomatoes", Price: "55 kr / kg", PackageSize: "500 g", Image: "/assets/images/tomatoes.webp", Popular: false, Description: "Greenhouse tomatoes ripened on the vine."},
		{Name: "Potatoes", Price: "35 kr / kg", PackageSize: "2 kg", Image: "/assets/images/potatoes.webp", Popular: false, Description: "Almond potatoes from the Hamar region."},
		{Name: "Carrots", Price: "28 kr / kg", PackageSize: "1 kg", Image: "/assets/images/carrots.webp", Popular: false, Description: "Sweet storage carrots."},
		{Name: "Free-range Eggs", Price: "49 kr", PackageSize: "12 eggs", Image: "/assets/images/eggs.webp", Popular: true, Description: "Eggs from pasture-raised hens."},
	}

	for i := range items {
		items[i].PriceValue = price.Parse(items[i].Price)
	}
	return items
}
