package seedfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"users": [{"id": 7, "name": "Grace", "email": "grace@example.com", "age": 45}],
	"products": [{
		"id": 3,
		"name": "Kettle",
		"price": 39.9,
		"category": "Home",
		"inStock": 4,
		"specifications": {"power": "2kW"},
		"ratings": [{"score": 4, "comments": "boils"}]
	}]
}`

const testYAML = `
users:
  - id: 7
    name: Grace
    email: grace@example.com
    age: 45
products:
  - id: 3
    name: Kettle
    price: 39.9
    category: Home
    inStock: 4
    specifications:
      power: 2kW
    ratings:
      - score: 4
        comments: boils
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	fileName := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(fileName, []byte(content), 0o644))
	return fileName
}

func Test(t *testing.T) {
	type tTestCase struct {
		name     string
		fileName string
		content  string
	}
	testCases := []tTestCase{
		{name: "json", fileName: "seed.json", content: testJSON},
		{name: "yaml", fileName: "seed.yaml", content: testYAML},
		{name: "yml", fileName: "seed.YML", content: testYAML},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			seed, err := Load(writeFile(t, testCase.fileName, testCase.content))
			require.NoError(t, err)

			require.Len(t, seed.Users, 1)
			assert.Equal(t, 7, seed.Users[0].ID)
			assert.Equal(t, "Grace", *seed.Users[0].Name)
			assert.Equal(t, 45.0, *seed.Users[0].Age)

			require.Len(t, seed.Products, 1)
			product := seed.Products[0]
			assert.Equal(t, 3, product.ID)
			assert.Equal(t, 39.9, *product.Price)
			assert.Equal(t, 4.0, *product.InStock)
			assert.Equal(t, map[string]any{"power": "2kW"}, product.Specifications)
			assert.Equal(t, "boils", product.Ratings[0].Comments)
		})
	}
}

func TestEmptyYAML(t *testing.T) {
	seed, err := Load(writeFile(t, "seed.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, seed.Users)
	assert.Empty(t, seed.Products)
}

func TestLoadErrors(t *testing.T) {
	type tTestCase struct {
		name     string
		fileName string
		content  string
		wantErr  error
	}
	testCases := []tTestCase{
		{name: "zero_id", fileName: "seed.json", content: `{"users":[{"id":0}]}`, wantErr: ErrBadID},
		{name: "duplicate_product", fileName: "seed.json", content: `{"products":[{"id":2},{"id":2}]}`, wantErr: ErrDuplicateID},
		{name: "unknown_key", fileName: "seed.json", content: `{"orders":[]}`},
		{name: "broken_yaml", fileName: "seed.yaml", content: "users: [\n"},
		{name: "wrong_type", fileName: "seed.json", content: `{"users":[{"id":"one"}]}`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Load(writeFile(t, testCase.fileName, testCase.content))
			require.Error(t, err)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
