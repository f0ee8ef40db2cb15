package main

import (
	_ "bid_pricing/docs"
	"bid_pricing/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Bid Pricing Sync API
// @version         1.0
// @description     Bid line item pricing reconciliation and synchronization, backed by DynamoDB.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080

// @BasePath  /v1

func main() {
	closeLog := setupLogging()
	defer closeLog()

	routes.Run()
}
