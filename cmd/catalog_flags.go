package cmd

import (
	"os"

	"github.com/lehigh-university-libraries/bookresolver/internal/catalog"
	"github.com/spf13/cobra"
)

// catalogFlags are shared by every command that needs a catalog snapshot
type catalogFlags struct {
	location string
	kind     string
	apiKey   string
}

func (f *catalogFlags) register(cmd *cobra.Command) {
	kind := os.Getenv("CATALOG_TYPE")
	if kind == "" {
		kind = catalog.KindAuto
	}
	cmd.Flags().StringVar(&f.location, "catalog", os.Getenv("CATALOG_URL"), "Catalog location: URL, .db/.sqlite file or .json/.jsonl/.parquet export (CATALOG_URL)")
	cmd.Flags().StringVar(&f.kind, "catalog-type", kind, "Catalog kind: auto, library, vufind, file, sqlite (CATALOG_TYPE)")
	cmd.Flags().StringVar(&f.apiKey, "api-key", os.Getenv("CATALOG_API_KEY"), "API key sent to an HTTP catalog (CATALOG_API_KEY)")
}

func (f *catalogFlags) open() (catalog.Source, error) {
	return catalog.Open(f.kind, f.location, f.apiKey)
}
