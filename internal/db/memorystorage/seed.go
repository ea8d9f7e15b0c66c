package memorystorage

import "github.com/patric-chuzhbe/apidemo/internal/models"

func ptr[T any](value T) *T {
	return &value
}

func seedUsers() []models.User {
	return []models.User{
		{
			ID: 1,
			UserInput: models.UserInput{
				Name:  ptr("John Doe"),
				Email: ptr("john.doe@example.com"),
				Age:   ptr(30.0),
			},
		},
		{
			ID: 2,
			UserInput: models.UserInput{
				Name:  ptr("Jane Smith"),
				Email: ptr("jane.smith@example.com"),
				Age:   ptr(25.0),
			},
		},
	}
}

func seedProducts() []models.Product {
	return []models.Product{
		{
			ID: 1,
			ProductInput: models.ProductInput{
				Name:        ptr("Samsung Galaxy S23 Ultra"),
				Price:       ptr(1199.99),
				Description: ptr("Smartphone Android con pantalla Dynamic AMOLED 2X de 6.8'', 256GB almacenamiento, 12GB RAM, cámara principal 200MP, batería 5000mAh"),
				Category:    ptr("Electronics"),
				Tags:        []string{"smartphones", "samsung", "android", "5G"},
				InStock:     ptr(45.0),
				Specifications: map[string]any{
					"phone1": map[string]any{
						"processor": "Snapdragon 8 Gen 2",
						"screen":    "6.8 inch Dynamic AMOLED 2X",
						"battery":   "5000mAh",
						"ram":       "12GB",
						"storage":   "256GB",
						"os":        "Android 13",
					},
				},
				Ratings: []models.Rating{
					{
						Score:    4.5,
						Comments: "Excelente teléfono, la calidad de la cámara es increíble y la duración de la batería supera mis expectativas",
					},
				},
			},
		},
	}
}
