package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/annotate/internal/cli/ui"
	"github.com/conduit-lang/annotate/runtime/decorator"
)

// pickMember asks the user to choose one of names.
var pickMember = func(names []string) (string, error) {
	var choice string
	err := survey.AskOne(&survey.Select{
		Message: "Member:",
		Options: names,
	}, &choice)
	return choice, err
}

var isTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func newInspectCommand(opts *options) *cobra.Command {
	var member string
	var keys []string
	var pick bool

	cmd := &cobra.Command{
		Use:   "inspect [snapshot]",
		Short: "Show members and metadata from a snapshot",
		Long: `Show members and metadata from a registry snapshot.

Without --member every annotated member is listed with its keys. With
--member the member's metadata table is shown; --keys narrows it to the
named keys and fails if any of them is missing. --pick chooses the member
from an interactive list and needs a terminal.

The snapshot path defaults to snapshot.path from annotate.yml, resolved
against the working directory.`,
		Example: `  # List all members
  annotate inspect annotations.json

  # Show one member's table
  annotate inspect annotations.json --member Service.Run

  # Fetch specific keys as JSON
  annotate inspect annotations.json --member Service.Run --keys owner,version --format json

  # Choose the member from a list
  annotate inspect --pick`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get working directory: %w", err)
				}
				path = opts.cfg.SnapshotPath(cwd)
			}

			snap, err := readSnapshot(path)
			if err != nil {
				return err
			}
			opts.logger.Debug("snapshot loaded",
				zap.String("path", path),
				zap.String("id", snap.ID),
				zap.Int("members", len(snap.Members)),
			)

			if pick && member == "" {
				if member, err = opts.pick(snap); err != nil {
					return err
				}
			}
			if member == "" {
				return opts.printMembers(cmd, snap, path)
			}
			return opts.printMember(cmd, snap, member, keys)
		},
	}

	cmd.Flags().StringVar(&member, "member", "", "Member to show, as Type.Method")
	cmd.Flags().StringSliceVar(&keys, "keys", nil, "Comma-separated metadata keys to fetch")
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose the member interactively")
	cmd.MarkFlagsMutuallyExclusive("member", "pick")
	return cmd
}

func readSnapshot(path string) (*decorator.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return decorator.LoadSnapshot(data)
}

func (o *options) pick(snap *decorator.Snapshot) (string, error) {
	if !isTerminal() {
		return "", errors.New("--pick needs an interactive terminal; use --member instead")
	}
	// Full names always resolve, even when short names collide.
	names := make([]string, 0, len(snap.Members))
	for _, sm := range snap.Members {
		names = append(names, sm.MemberKey.String())
	}
	if len(names) == 0 {
		return "", errors.New("snapshot has no members to pick from")
	}

	choice, err := pickMember(names)
	if err != nil {
		return "", fmt.Errorf("member selection cancelled: %w", err)
	}
	o.logger.Debug("member picked", zap.String("member", choice))
	return choice, nil
}

func (o *options) printMembers(cmd *cobra.Command, snap *decorator.Snapshot, path string) error {
	w := cmd.OutOrStdout()
	if o.format == "json" {
		return writeJSON(w, snap.Members)
	}
	if len(snap.Members) == 0 {
		cmd.PrintErr(ui.EmptySnapshotWarning(path, o.noColor))
		return nil
	}

	table := ui.NewTable(w, o.noColor, "MEMBER", "KEYS")
	for _, sm := range snap.Members {
		table.AddRow(sm.MemberKey.ShortName(), strings.Join(sm.Metadata.Keys(), ", "))
	}
	table.Render()
	return nil
}

func (o *options) printMember(cmd *cobra.Command, snap *decorator.Snapshot, name string, keys []string) error {
	m, err := snap.Member(name)
	var annErr *decorator.Error
	if errors.Is(err, decorator.ErrAmbiguousMember) && errors.As(err, &annErr) {
		cmd.PrintErr(ui.AmbiguousMemberError(name, annErr.Candidates, o.noColor))
		return errReported
	}
	if err != nil {
		cmd.PrintErr(ui.MemberNotFoundError(name, ui.Suggest(name, snap.Names(), nil), o.noColor))
		return errReported
	}

	var values decorator.Table
	if len(keys) == 0 {
		values = decorator.GetMetadata(m)
	} else {
		values, err = decorator.GetMetadataKeys(m, keys...)
		if err != nil {
			cmd.PrintErr(o.renderMetadataError(m, err))
			return errReported
		}
	}

	if o.format == "json" {
		return writeJSON(cmd.OutOrStdout(), values)
	}

	kv := ui.NewKeyValueTable(cmd.OutOrStdout(), o.noColor)
	for _, k := range values.Keys() {
		kv.AddRow(k, fmt.Sprintf("%v", values[k]))
	}
	kv.Render()
	return nil
}

func (o *options) renderMetadataError(m *decorator.Member, err error) string {
	var merr *decorator.Error
	if !errors.As(err, &merr) {
		return ui.MetadataError("lookup failed", err.Error(), o.noColor)
	}

	name := m.Key.ShortName()
	switch {
	case errors.Is(err, decorator.ErrKeyNotFound):
		suggestions := ui.Suggest(merr.Key, decorator.GetMetadata(m).Keys(), nil)
		return ui.KeyNotFoundError(name, merr.Key, suggestions, o.noColor)
	case errors.Is(err, decorator.ErrMetadataNotFound):
		return ui.MetadataError("metadata not found", fmt.Sprintf("%s has no metadata.", name), o.noColor)
	case errors.Is(err, decorator.ErrInvalidKey):
		return ui.MetadataError("invalid key", "Metadata keys must not be empty.", o.noColor)
	}
	return ui.MetadataError(string(merr.Code), merr.Error(), o.noColor)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
