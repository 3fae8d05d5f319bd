package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"leadintake/internal/domain/lead"
)

var errInvalidDraft = errors.New("draft does not pass validation")

// formFlags are the inputs shared by the form commands
type formFlags struct {
	schemaPath string
	draftPath  string
	limitPath  string
	role       string
	actorID    string
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.schemaPath, "schema", "s", "", "lead form schema file (yaml or json)")
	cmd.Flags().StringVarP(&f.draftPath, "draft", "d", "", "draft file (yaml or json); empty draft when omitted")
	cmd.Flags().StringVar(&f.limitPath, "limit", "", "franchise commission limit file")
	cmd.Flags().StringVarP(&f.role, "role", "r", string(lead.RoleAgent), "acting role")
	cmd.Flags().StringVar(&f.actorID, "actor", "cli", "acting user id")
	_ = cmd.MarkFlagRequired("schema")
}

// load reads the schema, draft and limit and builds the form context.
func (f *formFlags) load() (*lead.Draft, lead.Context, error) {
	actor := lead.Actor{ID: f.actorID, Role: lead.Role(f.role)}

	var schema lead.Schema
	if err := decodeFile(f.schemaPath, &schema); err != nil {
		return nil, lead.Context{}, err
	}
	if err := schema.Check(); err != nil {
		return nil, lead.Context{}, err
	}

	d := lead.NewDraft(actor)
	if f.draftPath != "" {
		var loaded lead.Draft
		if err := decodeFile(f.draftPath, &loaded); err != nil {
			return nil, lead.Context{}, err
		}
		d = loaded.Clone()
	}
	if d.Selection() == "" {
		switch {
		case schema.LeadType == lead.TypeNewLead:
			d.Select(lead.NewLeadOption)
		case lead.RefID(schema.Bank) != "":
			d.Select(lead.RefID(schema.Bank))
		}
	}

	c := lead.Context{Actor: actor, Schema: &schema}
	if f.limitPath != "" {
		var limit lead.CommissionLimit
		if err := decodeFile(f.limitPath, &limit); err != nil {
			return nil, lead.Context{}, err
		}
		c.CommissionLimit = &limit
	}
	return d, c, nil
}

func newRenderCmd() *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the widgets and document slots a draft would show",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, c, err := flags.load()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"policy":        c.Policy(d),
				"fields":        lead.Render(c.Schema, d),
				"documentTypes": lead.RenderDocuments(c.Schema, d),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newValidateCmd() *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run the submission checklist against a draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, c, err := flags.load()
			if err != nil {
				return err
			}
			errs := lead.Validate(d, c)
			out := cmd.OutOrStdout()
			if len(errs) == 0 {
				fmt.Fprintln(out, "ok")
				return nil
			}
			for _, e := range errs {
				fmt.Fprintln(out, "- "+e)
			}
			return errInvalidDraft
		},
	}
	flags.register(cmd)
	return cmd
}

func newPayloadCmd() *cobra.Command {
	var flags formFlags
	var force bool
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "Print the create/update body a draft would be sent as",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, c, err := flags.load()
			if err != nil {
				return err
			}
			if errs := lead.Validate(d, c); len(errs) > 0 && !force {
				return fmt.Errorf("%w: %s", errInvalidDraft, errs.Error())
			}
			return writeJSON(cmd.OutOrStdout(), lead.Assemble(d, c))
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "assemble even when validation fails")
	return cmd
}

func decodeFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, out)
	default:
		err = yaml.Unmarshal(b, out)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
