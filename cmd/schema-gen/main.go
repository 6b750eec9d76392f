// Schema Generator
//
// Generates JSON Schema files from the internal API request and response types
// so the dashboard frontend can derive its validators from them.
//
// Usage:
//
//	go run cmd/schema-gen/main.go [-out ../../shared/schemas]
//
// Output:
//
//	analytics.json
//	scheduling.json
//	classification.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/kosarica/grooming-service/internal/handlers"
	"github.com/kosarica/grooming-service/internal/signals"
	"github.com/kosarica/grooming-service/internal/types"
)

// SchemaGroup represents a group of related schemas
type SchemaGroup struct {
	Name   string
	Types  []any
	Output string
}

func main() {
	outputDir := flag.String("out", "../../shared/schemas", "output directory")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, group := range groups() {
		schema := generateGroupSchema(group)
		outputPath := filepath.Join(*outputDir, group.Output)

		if err := writeSchema(schema, outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", group.Output, err)
			os.Exit(1)
		}

		fmt.Printf("Generated %s\n", outputPath)
	}

	fmt.Println("Schema generation complete!")
}

func groups() []SchemaGroup {
	return []SchemaGroup{
		{
			Name: "analytics",
			Types: []any{
				// Request types
				handlers.OpportunityRequest{},
				// Response types
				handlers.HeatmapResponse{},
				handlers.AlertsResponse{},
				types.ClientProfile{},
				types.Alert{},
				types.ForecastPoint{},
				signals.Snapshot{},
			},
			Output: "analytics.json",
		},
		{
			Name: "scheduling",
			Types: []any{
				// Request types
				handlers.NormalizeRequest{},
				handlers.RescheduleRequest{},
				handlers.LayoutRequest{},
				// Response types
				handlers.AvailabilityResponse{},
				handlers.RescheduleResponse{},
				types.Appointment{},
				types.CalendarEvent{},
				types.AvailabilityBlock{},
			},
			Output: "scheduling.json",
		},
		{
			Name: "classification",
			Types: []any{
				// Request types
				handlers.ClassifyRequest{},
				handlers.RulesBody{},
				handlers.CategoryRequest{},
				// Response types
				handlers.CategoryResponse{},
				handlers.HealthResponse{},
			},
			Output: "classification.json",
		},
	}
}

// generateGroupSchema creates a combined schema with all types in a group
func generateGroupSchema(group SchemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{
		DoNotReference: false,
		ExpandedStruct: false,
	}

	definitions := make(map[string]any)
	for _, t := range group.Types {
		schema := reflector.Reflect(t)

		// $ref looks like "#/$defs/ClassifyRequest"
		typeName := ""
		if schema.Ref != "" {
			typeName = filepath.Base(schema.Ref)
		}

		for name, def := range schema.Definitions {
			definitions[name] = def
		}
		if typeName != "" && schema.Definitions[typeName] != nil {
			definitions[typeName] = schema.Definitions[typeName]
		}
	}

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         fmt.Sprintf("https://grooming.local/schemas/%s.json", group.Name),
		"title":       fmt.Sprintf("%s API Types", capitalize(group.Name)),
		"description": fmt.Sprintf("JSON Schema for %s API types generated from Go structs", group.Name),
		"$defs":       definitions,
	}
}

// writeSchema writes a schema to a JSON file
func writeSchema(schema map[string]any, path string) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
