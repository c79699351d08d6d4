package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/blackwell-systems/combatlens/internal/output"
	"github.com/blackwell-systems/combatlens/internal/profile"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles [name]",
	Short: "List or show analysis profiles",
	Long: `Without arguments, list every profile found in the configured
profile_dirs and the built-in profiles. With a name or path, load and
validate that profile and print what it measures.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if len(args) == 1 {
		p, err := e.loader.Resolve(args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(w, p)
		}
		renderProfile(w, p)
		return nil
	}

	type entry struct {
		Name        string `json:"name"`
		Source      string `json:"source,omitempty"`
		Description string `json:"description,omitempty"`
		Error       string `json:"error,omitempty"`
	}
	var entries []entry
	for _, name := range e.loader.Available() {
		p, err := e.loader.Resolve(name)
		if err != nil {
			entries = append(entries, entry{Name: name, Error: err.Error()})
			continue
		}
		entries = append(entries, entry{Name: name, Source: p.Source, Description: p.Description})
	}

	if flagJSON {
		return writeJSON(w, entries)
	}

	fmt.Fprintln(w, output.Section("Profiles"))
	fmt.Fprintln(w)
	tbl := output.NewTable("Name", "Source", "Description")
	for _, en := range entries {
		desc := en.Description
		if en.Error != "" {
			desc = output.StyleError.Render(en.Error)
		}
		tbl.AddRow(en.Name, output.StyleMuted.Render(en.Source), desc)
	}
	tbl.Fprint(w)
	return nil
}

func renderProfile(w io.Writer, p *profile.Profile) {
	fmt.Fprintln(w, output.Section("Profile: "+p.Name))
	if p.Description != "" {
		fmt.Fprintf(w, " %s\n", p.Description)
	}
	fmt.Fprintf(w, " %s %s   %s -%.0f%% / -%.0f%%\n",
		output.StyleMuted.Render("Source:"), p.Source,
		output.StyleMuted.Render("Offsets:"), p.Offsets.Regular*100, p.Offsets.Major*100,
	)

	fmt.Fprintln(w, output.Section("Abilities"))
	fmt.Fprintln(w)
	abilities := output.NewTable("ID", "Name", "Cooldown", "Charges", "Target", "Importance")
	for _, a := range p.Abilities {
		importance := a.Importance
		if a.NoSuggestion {
			importance = "no suggestion"
		}
		abilities.AddRow(
			strconv.Itoa(a.AbilityID), a.Name,
			fmt.Sprintf("%.0fs", float64(a.CooldownMs)/1000),
			strconv.Itoa(a.MaxCharges),
			fmt.Sprintf("%.0f%%", a.RecommendedEfficiency*100),
			orDash(importance),
		)
	}
	abilities.Fprint(w)

	if len(p.Uptimes) > 0 {
		fmt.Fprintln(w, output.Section("Uptimes"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Buff", "Name", "Target")
		for _, u := range p.Uptimes {
			target := "-"
			if u.Target > 0 {
				target = output.FormatPercentage(u.Target)
			}
			tbl.AddRow(strconv.Itoa(u.BuffID), u.Name, target)
		}
		tbl.Fprint(w)
	}

	if len(p.Windows) > 0 || len(p.Bonuses) > 0 {
		fmt.Fprintln(w, output.Section("Windows"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Name", "Measures", "Talent")
		for _, win := range p.Windows {
			tbl.AddRow(win.Name,
				fmt.Sprintf("%d x %s per %s", win.ExpectedPerWindow, win.AbilityName, win.BuffName),
				talentLabel(win.RequiresTalent))
		}
		for _, b := range p.Bonuses {
			tbl.AddRow(b.Name,
				fmt.Sprintf("+%.0f%% damage during %s", b.Multiplier*100, b.BuffName),
				talentLabel(b.RequiresTalent))
		}
		tbl.Fprint(w)
	}

	if len(p.Resources) > 0 {
		fmt.Fprintln(w, output.Section("Resources"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Type", "Range", "Overcap target")
		for _, r := range p.Resources {
			ceiling := "∞"
			if r.Model.Ceiling > 0 {
				ceiling = strconv.FormatInt(r.Model.Ceiling, 10)
			}
			tbl.AddRow(r.Model.Type,
				fmt.Sprintf("%d..%s", r.Model.Floor, ceiling),
				output.FormatPercentage(r.OvercapTarget))
		}
		tbl.Fprint(w)
	}
}

func talentLabel(id int) string {
	if id == 0 {
		return "-"
	}
	return strconv.Itoa(id)
}
