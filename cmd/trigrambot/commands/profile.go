// ABOUTME: CLI command to view and update user profiles
// ABOUTME: Shows admin flag, auto-reply mode and active table for a user id
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/trigrambot/internal/models"
)

var (
	profileAdmin      bool
	profileAnswerMode bool
	profileTable      string
)

// NewProfileCmd creates the profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage user profiles",
		Long: `View and manage user profiles.

Every user or chat id the bot has seen has a profile holding its admin
flag, whether the bot auto-replies, and the table it reads and writes.

Examples:
  trigrambot profile show alice
  trigrambot profile show alice --format json
  trigrambot profile set alice --admin
  trigrambot profile set alice --answer-mode=false --table poems`,
	}

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show a profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileShow,
	}

	setCmd := &cobra.Command{
		Use:   "set ID",
		Short: "Update profile fields",
		Long: `Update profile fields. The profile is created with defaults if the
id has not been seen yet. Only the flags given are changed.

Examples:
  trigrambot profile set alice --admin
  trigrambot profile set alice --admin=false
  trigrambot profile set bob --table poems`,
		Args: cobra.ExactArgs(1),
		RunE: runProfileSet,
	}

	setCmd.Flags().BoolVar(&profileAdmin, "admin", false, "Grant or revoke admin commands")
	setCmd.Flags().BoolVar(&profileAnswerMode, "answer-mode", true, "Enable or disable auto replies")
	setCmd.Flags().StringVar(&profileTable, "table", "", "Set the active table (created if missing)")

	cmd.AddCommand(showCmd, setCmd)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	// read the durable row so changes made by a running server are visible
	p, err := a.store.Profiles().Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting profile: %w", err)
	}
	if p == nil {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No profile found for %s\n", args[0])
		}
		return nil
	}
	return printProfile(cmd, *p)
}

func printProfile(cmd *cobra.Command, p models.Profile) error {
	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "FIELD\tVALUE\n")
	fmt.Fprintf(w, "-----\t-----\n")
	fmt.Fprintf(w, "User\t%s\n", truncate(p.UserID, 48))
	fmt.Fprintf(w, "Admin\t%s\n", yesNo(p.IsAdmin))
	fmt.Fprintf(w, "Auto reply\t%s\n", yesNo(p.AnswerMode))
	fmt.Fprintf(w, "Active table\t%s\n", p.ActiveTable)
	return w.Flush()
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	var patch models.ProfilePatch
	if flags.Changed("admin") {
		patch.IsAdmin = &profileAdmin
	}
	if flags.Changed("answer-mode") {
		patch.AnswerMode = &profileAnswerMode
	}
	if flags.Changed("table") {
		patch.ActiveTable = &profileTable
	}
	if patch.Empty() {
		return fmt.Errorf("no updates specified. Use --admin, --answer-mode, or --table")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if patch.ActiveTable != nil {
		t, err := a.model.CreateTable(ctx, profileTable)
		if err != nil {
			return fmt.Errorf("invalid table %q: %w", profileTable, err)
		}
		name := t.Name()
		patch.ActiveTable = &name
	}

	p, err := a.profiles.GetOrCreate(ctx, args[0])
	if err != nil {
		return err
	}
	p = p.Apply(patch)
	if _, err := a.profiles.Update(ctx, p); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Profile updated successfully"))
	}
	return nil
}
