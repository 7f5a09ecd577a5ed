// Package all wires every supported bestseller site into one registry.
package all

import (
	"github.com/maltedev/bestseller-scraper/internal/provider"
	"github.com/maltedev/bestseller-scraper/internal/provider/aladin"
	"github.com/maltedev/bestseller-scraper/internal/provider/amazon"
	"github.com/maltedev/bestseller-scraper/internal/provider/elcorteingles"
	"github.com/maltedev/bestseller-scraper/internal/provider/kinokuniya"
)

func Registry() (*provider.Registry, error) {
	return provider.NewRegistry(
		aladin.New(),
		amazon.New(),
		kinokuniya.New(),
		elcorteingles.New(),
	)
}
