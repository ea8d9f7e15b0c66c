// Command apidemo serves the catalog API: in-memory users and products
// behind an OpenAPI gate, with the documentation under /api-docs.
package main

import (
	"github.com/patric-chuzhbe/apidemo/internal/app"
)

func main() {
	theApp, err := app.New()
	if err != nil {
		panic(err)
	}
	defer theApp.Close()

	if err := theApp.Run(); err != nil {
		panic(err)
	}
}
