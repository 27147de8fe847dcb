package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/clockert/fram-backend/config"
	"github.com/clockert/fram-backend/internal/app/model"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/db"
	"github.com/clockert/fram-backend/internal/storage"
	"github.com/clockert/fram-backend/pkg/price"
)

// catalogFile mirrors the JSON the storefront ships with. Price may be a
// label ("45 kr / kg") or a bare number.
type catalogFile struct {
	Products []catalogProduct `json:"products"`
}

type catalogProduct struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       interface{} `json:"price"`
	PackageSize string      `json:"quantity"`
	Image       string      `json:"image"`
	Popular     bool        `json:"popular"`
}

func main() {
	imagesDir := flag.String("images", "", "optional directory of product images to upload to S3")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-images <dir>] <catalog_json_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading catalog file: %s\n", filePath)
	products, err := readCatalog(filePath)
	if err != nil {
		log.Fatal("Failed to read catalog:", err)
	}

	fmt.Printf("Total products to import: %d\n", len(products))

	if *imagesDir != "" {
		if err := uploadImages(&cfg.S3, *imagesDir, products); err != nil {
			log.Fatal("Failed to upload product images:", err)
		}
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	if err := productRepo.BulkCreate(products, 100); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total products imported: %d\n", len(products))
}

func readCatalog(filePath string) ([]model.Product, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(catalog.Products) == 0 {
		return nil, fmt.Errorf("catalog file contains no products")
	}

	products := make([]model.Product, 0, len(catalog.Products))
	for i, p := range catalog.Products {
		if p.Name == "" {
			return nil, fmt.Errorf("product %d has no name", i)
		}

		label := ""
		if s, ok := p.Price.(string); ok {
			label = s
		} else {
			label = fmt.Sprintf("%v kr", p.Price)
		}

		products = append(products, model.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       label,
			PriceValue:  price.FromAny(p.Price),
			PackageSize: p.PackageSize,
			Image:       p.Image,
			Popular:     p.Popular,
		})
	}
	return products, nil
}

// uploadImages pushes local product images to S3 and rewrites each product's
// Image field to the uploaded URL. Images are matched by the filename the
// catalog references.
func uploadImages(cfg *config.S3Config, dir string, products []model.Product) error {
	s3Store, err := storage.NewS3Storage(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	for i := range products {
		if products[i].Image == "" {
			continue
		}

		localPath := filepath.Join(dir, filepath.Base(products[i].Image))
		f, err := os.Open(localPath)
		if err != nil {
			fmt.Printf("Skipping image for %s: %v\n", products[i].Name, err)
			continue
		}

		contentType := mime.TypeByExtension(filepath.Ext(localPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		url, err := s3Store.UploadImage(ctx, filepath.Base(localPath), contentType, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to upload %s: %w", localPath, err)
		}

		products[i].Image = url
		fmt.Printf("Uploaded image for %s: %s\n", products[i].Name, url)
	}
	return nil
}
