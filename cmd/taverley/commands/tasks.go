package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List configured tasks",
	Long: `List the tasks from taverley.yaml with their skill requirement,
training area and current eligibility.

Eligibility is checked against the configured client: the simulator's
seeded levels, or the live account when client.kind is remote.

Use --json to output as JSON for scripting.`,
	RunE: runTasks,
}

func init() {
	tasksCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(tasksCmd)
}

type taskListing struct {
	Name          string `json:"name"`
	Skill         string `json:"skill"`
	RequiredLevel int    `json:"required_level"`
	CurrentLevel  int    `json:"current_level"`
	MembersOnly   bool   `json:"members_only,omitempty"`
	Anchor        string `json:"anchor,omitempty"`
	Eligible      bool   `json:"eligible"`
}

func runTasks(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := initLogging(cmd, cfg); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	cl, closeClient, err := buildClient(cfg)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}
	defer closeClient()

	tasks := cfg.RotationTasks()
	if len(tasks) == 0 {
		fmt.Println("No tasks configured.")
		return nil
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		reg, err := buildRegistry(cfg, cl)
		if err != nil {
			return err
		}
		for i := range reg.Tasks() {
			reg.Describe(i)
		}
	}

	listings := make([]taskListing, 0, len(tasks))
	for _, t := range tasks {
		listings = append(listings, taskListing{
			Name:          t.Name,
			Skill:         string(t.Skill),
			RequiredLevel: t.RequiredLevel,
			CurrentLevel:  cl.SkillLevel(t.Skill),
			MembersOnly:   t.MembersOnly,
			Anchor:        string(t.Anchor),
			Eligible:      t.CanDo(cl),
		})
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSKILL\tREQUIRED\tCURRENT\tMEMBERS\tANCHOR\tELIGIBLE")
	for _, l := range listings {
		members := ""
		if l.MembersOnly {
			members = "yes"
		}
		eligible := "yes"
		if !l.Eligible {
			eligible = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			l.Name, l.Skill, l.RequiredLevel, l.CurrentLevel, members, l.Anchor, eligible)
	}
	return w.Flush()
}
