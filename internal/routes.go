package internal

import (
	"net/http"

	"artifactd/internal/controllers"
	"artifactd/internal/providers"
	"artifactd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/artifacts", http.HandlerFunc(apiController.GetArtifacts))
	routers.Get("/artifacts/changelog", http.HandlerFunc(apiController.GetChangelog))
	return routers
}
