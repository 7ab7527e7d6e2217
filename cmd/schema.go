package cmd

import (
	"encoding/json"

	"github.com/bbdl-cli/bbdl/podcast"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

// schemaCmd prints the JSON Schema of the metadata sidecar files.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the episode metadata files",
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := new(jsonschema.Reflector)
		reflector.DoNotReference = true

		schema := reflector.Reflect(&podcast.Metadata{})
		schema.Title = "Episode metadata"

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(schema)
	},
}
