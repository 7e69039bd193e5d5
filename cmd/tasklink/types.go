package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasklink/internal/api"
	"tasklink/internal/config"
	"tasklink/internal/models"
)

// typeCatalog is the file format accepted by "types apply".
type typeCatalog struct {
	Types []api.RelationshipTypeCreateRequest `yaml:"types"`
}

func newTypesCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var adminToken string
	cmd := &cobra.Command{
		Use:   "types",
		Short: "Manage relationship types",
	}
	cmd.PersistentFlags().StringVar(&adminToken, "admin-token", "", "admin token for writes (default $TASKLINK_ADMIN_TOKEN)")

	withTypesClient := func(cmd *cobra.Command, fn func(*api.Client) error) error {
		return withClient(cfg, func(client *api.Client) error {
			if cmd.Flags().Changed("admin-token") {
				client = client.WithAdminToken(adminToken)
			}
			return fn(client)
		})
	}

	cmd.AddCommand(
		newTypesListCmd(cfg, jsonOutput),
		newTypesShowCmd(cfg, jsonOutput),
		newTypesCreateCmd(withTypesClient, jsonOutput),
		newTypesRmCmd(withTypesClient, jsonOutput),
		newTypesApplyCmd(withTypesClient, jsonOutput),
	)
	return cmd
}

type typesClientFunc func(cmd *cobra.Command, fn func(*api.Client) error) error

func newTypesListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		systemOnly bool
		search     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List relationship types",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if systemOnly {
				query.Set("system", "true")
			}
			setIfNotEmpty(query, "search", search)
			return withClient(cfg, func(client *api.Client) error {
				types, err := client.ListRelationshipTypes(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(types)
				}
				return writeRelationshipTypes(types)
			})
		},
	}
	cmd.Flags().BoolVar(&systemOnly, "system", false, "only built-in types")
	cmd.Flags().StringVar(&search, "search", "", "filter by type or display name")
	return cmd
}

func newTypesShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show a relationship type",
		Args:  requireExactlyArgs(1, "type id or name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				typ, err := client.GetRelationshipType(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(typ)
				}
				return writeRelationshipTypes([]models.RelationshipType{typ})
			})
		},
	}
}

func newTypesCreateCmd(withTypesClient typesClientFunc, jsonOutput *bool) *cobra.Command {
	var (
		req              api.RelationshipTypeCreateRequest
		disabledStatuses string
		sourceStatuses   string
	)
	cmd := &cobra.Command{
		Use:   "create <type-name> <display-name>",
		Short: "Create a custom relationship type",
		Args:  requireExactlyArgs(2, "type name and display name are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TypeName = args[0]
			req.DisplayName = args[1]
			req.IsDirectional = req.ForwardLabel != "" || req.ReverseLabel != ""
			req.BlockingDisabledStatuses = splitCommaList(disabledStatuses)
			req.BlockingSourceStatuses = splitCommaList(sourceStatuses)
			req.EnforcesBlocking = len(req.BlockingDisabledStatuses) > 0 || len(req.BlockingSourceStatuses) > 0

			return withTypesClient(cmd, func(client *api.Client) error {
				typ, err := client.CreateRelationshipType(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(typ)
				}
				return writePlain("%s %s\n", typ.ID, typ.TypeName)
			})
		},
	}
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "description")
	cmd.Flags().StringVar(&req.ForwardLabel, "forward", "", "label read from source to target (makes the type directional)")
	cmd.Flags().StringVar(&req.ReverseLabel, "reverse", "", "label read from target to source")
	cmd.Flags().StringVar(&disabledStatuses, "block-statuses", "", "target statuses that are vetoed, comma separated")
	cmd.Flags().StringVar(&sourceStatuses, "while-source", "", "source statuses that veto, comma separated")
	return cmd
}

func newTypesRmCmd(withTypesClient typesClientFunc, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Delete an unused custom relationship type",
		Args:  requireExactlyArgs(1, "type id or name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTypesClient(cmd, func(client *api.Client) error {
				typ, err := client.DeleteRelationshipType(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(typ)
				}
				return writePlain("deleted relationship type %s\n", typ.TypeName)
			})
		},
	}
}

func newTypesApplyCmd(withTypesClient typesClientFunc, jsonOutput *bool) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update relationship types from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return errors.New("--file is required")
			}
			entries, err := readTypeCatalogFile(filePath)
			if err != nil {
				return err
			}
			return withTypesClient(cmd, func(client *api.Client) error {
				results, err := applyTypeCatalog(cmd.Context(), client, entries)
				if *jsonOutput {
					if werr := writeJSON(results); werr != nil {
						return werr
					}
					return err
				}
				for _, result := range results {
					_ = writePlain("%s %s\n", result.Action, result.TypeName)
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "catalog file (- for stdin)")
	return cmd
}

type applyResult struct {
	TypeName string `json:"type_name"`
	ID       string `json:"id"`
	Action   string `json:"action"`
}

// typeCatalogAPI is the slice of the API client that catalog application uses.
type typeCatalogAPI interface {
	GetRelationshipType(ctx context.Context, ref string) (models.RelationshipType, error)
	CreateRelationshipType(ctx context.Context, req api.RelationshipTypeCreateRequest) (models.RelationshipType, error)
	UpdateRelationshipType(ctx context.Context, id string, req api.RelationshipTypeUpdateRequest) (models.RelationshipType, error)
}

// applyTypeCatalog creates missing types and overwrites existing ones by name.
// It stops at the first failure and returns the results so far.
func applyTypeCatalog(ctx context.Context, client typeCatalogAPI, entries []api.RelationshipTypeCreateRequest) ([]applyResult, error) {
	results := make([]applyResult, 0, len(entries))
	for _, entry := range entries {
		existing, err := client.GetRelationshipType(ctx, entry.TypeName)
		if err != nil {
			apiErr, ok := api.AsAPIError(err)
			if !ok || apiErr.Status != http.StatusNotFound {
				return results, fmt.Errorf("look up %s: %w", entry.TypeName, err)
			}
			created, err := client.CreateRelationshipType(ctx, entry)
			if err != nil {
				return results, fmt.Errorf("create %s: %w", entry.TypeName, err)
			}
			results = append(results, applyResult{TypeName: created.TypeName, ID: created.ID, Action: "created"})
			continue
		}

		updated, err := client.UpdateRelationshipType(ctx, existing.ID, catalogPatch(entry))
		if err != nil {
			return results, fmt.Errorf("update %s: %w", entry.TypeName, err)
		}
		results = append(results, applyResult{TypeName: updated.TypeName, ID: updated.ID, Action: "updated"})
	}
	return results, nil
}

// catalogPatch overwrites every field but type_name, which identifies the entry.
func catalogPatch(entry api.RelationshipTypeCreateRequest) api.RelationshipTypeUpdateRequest {
	disabled := entry.BlockingDisabledStatuses
	source := entry.BlockingSourceStatuses
	if disabled == nil {
		disabled = []string{}
	}
	if source == nil {
		source = []string{}
	}
	return api.RelationshipTypeUpdateRequest{
		DisplayName:              &entry.DisplayName,
		Description:              &entry.Description,
		IsDirectional:            &entry.IsDirectional,
		ForwardLabel:             &entry.ForwardLabel,
		ReverseLabel:             &entry.ReverseLabel,
		EnforcesBlocking:         &entry.EnforcesBlocking,
		BlockingDisabledStatuses: &disabled,
		BlockingSourceStatuses:   &source,
	}
}

func readTypeCatalogFile(path string) ([]api.RelationshipTypeCreateRequest, error) {
	if path == "-" {
		return parseTypeCatalog(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseTypeCatalog(f)
}

// parseTypeCatalog decodes a catalog, rejecting unknown keys, entries without
// a type_name and duplicate names.
func parseTypeCatalog(r io.Reader) ([]api.RelationshipTypeCreateRequest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var catalog typeCatalog
	if err := dec.Decode(&catalog); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog is empty")
		}
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog.Types) == 0 {
		return nil, errors.New("catalog has no types")
	}

	seen := make(map[string]struct{}, len(catalog.Types))
	for i := range catalog.Types {
		entry := &catalog.Types[i]
		entry.TypeName = strings.TrimSpace(entry.TypeName)
		if entry.TypeName == "" {
			return nil, fmt.Errorf("catalog entry %d: type_name is required", i+1)
		}
		if _, dup := seen[entry.TypeName]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate type_name %q", i+1, entry.TypeName)
		}
		seen[entry.TypeName] = struct{}{}
	}
	return catalog.Types, nil
}
