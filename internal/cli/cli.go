// Package cli provides the command-line interface for the NetSuite forms
// compiler.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/GabrielNunesIT/netsuite-forms/internal/adapters/converters"
	"github.com/GabrielNunesIT/netsuite-forms/internal/config"
	"github.com/GabrielNunesIT/netsuite-forms/internal/domain"
	"github.com/GabrielNunesIT/netsuite-forms/internal/netsuite"
	"github.com/GabrielNunesIT/netsuite-forms/internal/properties"
	"github.com/GabrielNunesIT/netsuite-forms/internal/request"
	"github.com/GabrielNunesIT/netsuite-forms/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const stdinPath = "-"

// CLI holds the command-line interface configuration.
type CLI struct {
	log        logger.ILogger
	rootCmd    *cobra.Command
	configFile string
	schemaFile string
}

// New creates a new CLI instance.
func New(log logger.ILogger) *CLI {
	cli := &CLI{
		log: log,
	}

	cli.rootCmd = &cobra.Command{
		Use:           "netsuite-forms",
		Short:         "Compile the NetSuite REST OpenAPI document into form fields",
		Long:          "A CLI tool that compiles the NetSuite REST record service OpenAPI document into form-field trees, assembles and sends requests from filled forms, and exports per-resource reference documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.setupFlags()

	cli.rootCmd.AddCommand(
		cli.resourcesCmd(),
		cli.fieldsCmd(),
		cli.propertiesCmd(),
		cli.assembleCmd(),
		cli.invokeCmd(),
		cli.exportCmd(),
		cli.customRecordTypesCmd(),
		cli.customFieldsCmd(),
	)

	return cli
}

func (c *CLI) setupFlags() {
	c.rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Path to a YAML or JSON configuration file")
	c.rootCmd.PersistentFlags().StringVarP(&c.schemaFile, "schema", "s", "", "Path to the NetSuite OpenAPI document (overrides schema_file)")
}

// ExecuteContext runs the CLI with ctx passed to every command.
func (c *CLI) ExecuteContext(ctx context.Context) error {
	return c.rootCmd.ExecuteContext(ctx)
}

func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if c.schemaFile != "" {
		cfg.SchemaFile = c.schemaFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *CLI) loadIndex(cfg *config.Config) (*schema.Index, error) {
	c.log.Infof("Loading schema from: %s", cfg.SchemaFile)

	ix, err := schema.LoadFile(cfg.SchemaFile, schema.WithPolicy(cfg.Policy()))
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	doc := ix.Document()
	if doc.Info != nil {
		c.log.Infof("Loaded API: %s (%s), %d resources", doc.Info.Title, doc.Info.Version, len(ix.Tags()))
	}

	return ix, nil
}

func (c *CLI) loadCompiler() (*properties.Compiler, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	ix, err := c.loadIndex(cfg)
	if err != nil {
		return nil, err
	}

	return properties.NewCompiler(ix, cfg.CompilerConfig()), nil
}

func (c *CLI) newClient(ctx context.Context, cfg *config.Config) (*netsuite.Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return netsuite.NewClient(ctx, cfg.Credentials(), c.log, cfg.ClientOptions()...), nil
}

func (c *CLI) resourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List resources and their operation ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ix, err := c.loadIndex(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, tag := range ix.Tags() {
				fmt.Fprintf(out, "%s (%s)\n", tag, properties.Label(tag))

				ops, err := ix.Operations(tag)
				if err != nil {
					return err
				}
				for _, op := range ops {
					fmt.Fprintf(out, "  %-50s %s\n", op.ID, properties.OperationName(op))
				}
			}

			return nil
		},
	}
}

func (c *CLI) fieldsCmd() *cobra.Command {
	var resource, operation, format string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Print the compiled form fields of one operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			compiler, err := c.loadCompiler()
			if err != nil {
				return err
			}

			form, err := compiler.CompileResource(resource)
			if err != nil {
				return fmt.Errorf("failed to compile %s: %w", resource, err)
			}

			for _, op := range form.Operations {
				if op.ID == operation {
					return writeValue(cmd.OutOrStdout(), op, format)
				}
			}

			return fmt.Errorf("%w: operation %s in resource %s", domain.ErrNotFound, operation, resource)
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "Resource tag (required)")
	cmd.Flags().StringVarP(&operation, "operation", "p", "", "Operation id, e.g. \"get /customer/{id}\" (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

func (c *CLI) propertiesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Print the full property list: selectors, operation fields and custom fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			compiler, err := c.loadCompiler()
			if err != nil {
				return err
			}

			fields, err := compiler.CompileAll()
			if err != nil {
				return fmt.Errorf("failed to compile properties: %w", err)
			}

			c.log.Infof("Compiled %d properties", len(fields))

			return writeValue(cmd.OutOrStdout(), fields, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml")

	return cmd
}

func (c *CLI) assembleCmd() *cobra.Command {
	var resource, operation, valuesFile, format string

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Turn filled form values into a request descriptor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := readValues(cmd.InOrStdin(), valuesFile)
			if err != nil {
				return err
			}
			selectOperation(values, resource, operation)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ix, err := c.loadIndex(cfg)
			if err != nil {
				return err
			}

			tag, _ := values[domain.ResourceKey].(string)
			id, _ := values[domain.OperationKey].(string)

			req, err := request.NewAssembler(ix).Assemble(tag, id, values)
			if err != nil {
				return fmt.Errorf("failed to assemble request: %w", err)
			}

			return writeValue(cmd.OutOrStdout(), req, format)
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "Resource tag (defaults to the resource value)")
	cmd.Flags().StringVarP(&operation, "operation", "p", "", "Operation id (defaults to the operation value)")
	cmd.Flags().StringVarP(&valuesFile, "values", "v", stdinPath, "JSON file with the form values, - for stdin")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml")

	return cmd
}

func (c *CLI) invokeCmd() *cobra.Command {
	var resource, operation, valuesFile string
	var debug bool

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Assemble and send a request to NetSuite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := readValues(cmd.InOrStdin(), valuesFile)
			if err != nil {
				return err
			}
			selectOperation(values, resource, operation)
			if debug {
				values[domain.DebugModeKey] = true
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ix, err := c.loadIndex(cfg)
			if err != nil {
				return err
			}
			client, err := c.newClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			executor := netsuite.NewExecutor(request.NewAssembler(ix), client, c.log)

			result, err := executor.Execute(cmd.Context(), values)
			if err != nil {
				return fmt.Errorf("operation failed: %w", err)
			}

			return writeValue(cmd.OutOrStdout(), result, "json")
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "Resource tag (defaults to the resource value)")
	cmd.Flags().StringVarP(&operation, "operation", "p", "", "Operation id (defaults to the operation value)")
	cmd.Flags().StringVarP(&valuesFile, "values", "v", stdinPath, "JSON file with the form values, - for stdin")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Return request details and turn API errors into results")

	return cmd
}

func (c *CLI) exportCmd() *cobra.Command {
	var resource, format, outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the compiled forms of a resource as a PDF, Word or Confluence document",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			converter, err := getConverter(format)
			if err != nil {
				return err
			}

			compiler, err := c.loadCompiler()
			if err != nil {
				return err
			}

			form, err := compiler.CompileResource(resource)
			if err != nil {
				return fmt.Errorf("failed to compile %s: %w", resource, err)
			}

			c.log.Infof("Converting %s to %s format...", form.Label, converter.Format())

			out, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer out.Close()

			if err := converter.Convert(form, out); err != nil {
				return fmt.Errorf("conversion failed: %w", err)
			}

			c.log.Infof("Successfully created: %s", outputFile)

			return nil
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "Resource tag (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format: pdf, docx, confluence")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Path for the output file (required)")
	_ = cmd.MarkFlagRequired("resource")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *CLI) customRecordTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "custom-record-types",
		Short: "List the custom record types of the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.metadataClient(cmd.Context())
			if err != nil {
				return err
			}

			types, err := client.GetCustomRecordTypes(cmd.Context())
			if err != nil {
				return err
			}

			for _, t := range types {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func (c *CLI) customFieldsCmd() *cobra.Command {
	var resource, recordType, format string

	cmd := &cobra.Command{
		Use:   "custom-fields",
		Short: "List the custom fields of a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := c.metadataClient(cmd.Context())
			if err != nil {
				return err
			}

			options, err := client.CustomFieldOptions(cmd.Context(), resource, recordType)
			if err != nil {
				return err
			}

			return writeValue(cmd.OutOrStdout(), options, format)
		},
	}

	cmd.Flags().StringVarP(&resource, "resource", "r", "", "Resource tag (required)")
	cmd.Flags().StringVarP(&recordType, "record-type", "t", "", "Custom record type, for the CustomRecord resource")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, yaml")
	_ = cmd.MarkFlagRequired("resource")

	return cmd
}

// metadataClient builds a client without requiring a schema file.
func (c *CLI) metadataClient(ctx context.Context) (*netsuite.Client, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return c.newClient(ctx, cfg)
}

func getConverter(format string) (domain.Converter, error) {
	switch strings.ToLower(format) {
	case "pdf":
		return converters.NewPDFConverter(), nil
	case "docx", "word":
		return converters.NewDocxConverter(), nil
	case "confluence", "adf":
		return converters.NewADFConverter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: pdf, docx, confluence)", format)
	}
}

// readValues decodes a JSON object of form values from path, or from in
// when path is "-".
func readValues(in io.Reader, path string) (map[string]any, error) {
	var data []byte
	var err error

	if path == stdinPath || path == "" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}

	values := map[string]any{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: values must be a JSON object: %w", domain.ErrInvalidRequest, err)
	}
	if values == nil {
		values = map[string]any{}
	}

	return values, nil
}

// selectOperation lets flags override the selection stored in values.
func selectOperation(values map[string]any, resource, operation string) {
	if resource != "" {
		values[domain.ResourceKey] = resource
	}
	if operation != "" {
		values[domain.OperationKey] = operation
	}
}

func writeValue(out io.Writer, v any, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(v)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s (supported: json, yaml)", format)
	}
}
